package streak

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/stride-server/domain"
)

// 2025-06-02 is a Monday.
func day(d int, hour int) time.Time {
	return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
}

func weekendTracker() (Tracker, domain.StreakState) {
	s := domain.NewStreakState()
	s.SelectedRestDays = []int{0, 6}
	return Tracker{Policy: PolicyGap, Location: time.UTC}, s
}

func TestWorkWeekWithRestWeekend(t *testing.T) {
	tr, s := weekendTracker()

	for d := 2; d <= 6; d++ { // Monday to Friday
		s = tr.RecordActivity(s, day(d, 10))
	}
	assert.Equal(t, 5, s.CurrentStreak)

	s = tr.Decay(s, day(9, 8)) // next Monday, on load
	assert.Equal(t, 5, s.CurrentStreak, "weekend rest does not break the streak")
	require.NotNil(t, s.LastActiveDate)

	s = tr.RecordActivity(s, day(9, 10))
	assert.Equal(t, 6, s.CurrentStreak)
	assert.Equal(t, "2025-06-09", *s.LastActiveDate)
}

func TestSameDayAndRestDayAreNeutral(t *testing.T) {
	tr, s := weekendTracker()
	s = tr.RecordActivity(s, day(2, 9))
	s = tr.RecordActivity(s, day(2, 18))
	assert.Equal(t, 1, s.CurrentStreak)

	before := s
	s = tr.RecordActivity(s, day(7, 12)) // Saturday
	assert.Equal(t, before, s)
}

func TestGapResets(t *testing.T) {
	tr, s := weekendTracker()
	s = tr.RecordActivity(s, day(2, 9))
	s = tr.RecordActivity(s, day(3, 9))
	require.Equal(t, 2, s.CurrentStreak)

	// Wednesday skipped.
	s = tr.RecordActivity(s, day(5, 9))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, "2025-06-05", *s.LastActiveDate)
}

func TestLastActiveOnNewRestDayResets(t *testing.T) {
	tr, s := weekendTracker()
	saturday := "2025-06-07"
	s.LastActiveDate = &saturday
	s.CurrentStreak = 4

	s = tr.RecordActivity(s, day(9, 10)) // Monday; the previous work day is Friday
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, "2025-06-09", *s.LastActiveDate)
}

func TestDecayClearsAfterMissedWorkDay(t *testing.T) {
	tr, s := weekendTracker()
	s = tr.RecordActivity(s, day(2, 9))
	s = tr.RecordActivity(s, day(3, 9))

	same := tr.Decay(s, day(4, 7))
	assert.Equal(t, s, same, "yesterday was active")

	s = tr.Decay(s, day(5, 7))
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Nil(t, s.LastActiveDate)
}

func TestPreviousWorkDay(t *testing.T) {
	assert.Equal(t, day(6, 0), PreviousWorkDay([]int{0, 6}, day(9, 0)))
	assert.Equal(t, day(8, 0), PreviousWorkDay(nil, day(9, 0)))
}

func TestToggleRestDay(t *testing.T) {
	s := domain.NewStreakState()
	var err error
	s, err = ToggleRestDay(s, 0)
	require.NoError(t, err)
	s, err = ToggleRestDay(s, 6)
	require.NoError(t, err)

	_, err = ToggleRestDay(s, 3)
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	s, err = ToggleRestDay(s, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, s.SelectedRestDays)

	_, err = ToggleRestDay(s, 7)
	assert.Error(t, err)

	_, err = SetRestDays(s, []int{1, 2, 3})
	assert.Error(t, err)
	s, err = SetRestDays(s, []int{5, 5})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, s.SelectedRestDays)
}

func TestRestDayViolationPolicy(t *testing.T) {
	tr, s := weekendTracker()
	tr.Policy = PolicyRestDay
	s = tr.RecordActivity(s, day(2, 9))
	s = tr.RecordActivity(s, day(3, 9))

	s = tr.CheckViolations(s, []time.Time{day(1, 15)}, day(4, 9)) // edited on Sunday
	assert.True(t, s.IsStreakViolated)
	assert.Equal(t, 1, s.CurrentStreak)

	frozen := tr.RecordActivity(s, day(4, 9))
	assert.Equal(t, s, frozen, "a violated streak does not advance")

	s = tr.ResetViolation(s)
	assert.False(t, s.IsStreakViolated)
	assert.Nil(t, s.LastActiveDate)
	s = tr.RecordActivity(s, day(4, 9))
	assert.Equal(t, 1, s.CurrentStreak)

	old := tr.CheckViolations(s, []time.Time{day(1, 15)}, day(12, 9))
	assert.False(t, old.IsStreakViolated, "edits older than a week are ignored")
}

func TestGapPolicyIgnoresViolations(t *testing.T) {
	tr, s := weekendTracker()
	s = tr.RecordActivity(s, day(2, 9))
	out := tr.CheckViolations(s, []time.Time{day(1, 15)}, day(2, 10))
	assert.Equal(t, s, out)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyGap, p)
	p, err = ParsePolicy("rest-day")
	require.NoError(t, err)
	assert.Equal(t, PolicyRestDay, p)
	_, err = ParsePolicy("strict")
	assert.Error(t, err)
}
