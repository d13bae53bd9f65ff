// streak/streak.go
package streak

import (
	"fmt"
	"slices"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

const (
	DateLayout  = "2006-01-02"
	MaxRestDays = 2
	// violationWindow bounds how far back an edit on a rest day still
	// breaks the streak under PolicyRestDay.
	violationWindow = 7 * 24 * time.Hour
)

type Policy string

const (
	// PolicyGap breaks the streak only when a work day passes without
	// activity.
	PolicyGap Policy = "gap"
	// PolicyRestDay additionally breaks it when a note is modified on a
	// selected rest day.
	PolicyRestDay Policy = "rest-day"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyGap:
		return PolicyGap, nil
	case PolicyRestDay:
		return PolicyRestDay, nil
	}
	return "", fmt.Errorf("unknown streak policy %q", s)
}

type Tracker struct {
	Policy   Policy
	Location *time.Location
}

func (t Tracker) loc() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

func (t Tracker) day(now time.Time) time.Time {
	y, m, d := now.In(t.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.loc())
}

// RecordActivity advances the streak for activity at now. The streak grows
// only when the last activity fell on the previous work day; any other last
// date, including a day that has since become a rest day, restarts it. Rest
// days and a second activity on the same day leave the state unchanged.
func (t Tracker) RecordActivity(s domain.StreakState, now time.Time) domain.StreakState {
	if s.IsStreakViolated && t.Policy == PolicyRestDay {
		return s
	}
	today := t.day(now)
	if isRestDay(s.SelectedRestDays, today) {
		return s
	}
	todayStr := today.Format(DateLayout)
	if s.LastActiveDate != nil && *s.LastActiveDate == todayStr {
		return s
	}

	out := clone(s)
	prev := PreviousWorkDay(s.SelectedRestDays, today).Format(DateLayout)
	if s.LastActiveDate != nil && *s.LastActiveDate == prev {
		out.CurrentStreak = s.CurrentStreak + 1
	} else {
		out.CurrentStreak = 1
	}
	out.LastActiveDate = &todayStr
	return out
}

// Decay is the check run when the state is loaded: if a work day passed
// without activity since LastActiveDate the streak restarts and the last
// active date is cleared.
func (t Tracker) Decay(s domain.StreakState, now time.Time) domain.StreakState {
	if s.LastActiveDate == nil {
		return s
	}
	last, ok := t.lastActive(s)
	today := t.day(now)
	if ok && missedWorkDays(s.SelectedRestDays, last, today) == 0 {
		return s
	}
	out := clone(s)
	out.CurrentStreak = 1
	out.LastActiveDate = nil
	return out
}

// PreviousWorkDay returns the most recent day strictly before day that is
// not a rest day.
func PreviousWorkDay(restDays []int, day time.Time) time.Time {
	d := day.AddDate(0, 0, -1)
	for i := 0; i < 7 && isRestDay(restDays, d); i++ {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// CheckViolations applies PolicyRestDay: a note modified on a selected rest
// day within the last week marks the streak as violated and restarts it.
func (t Tracker) CheckViolations(s domain.StreakState, modified []time.Time, now time.Time) domain.StreakState {
	if t.Policy != PolicyRestDay {
		return s
	}
	cutoff := now.Add(-violationWindow)
	violated := false
	for _, m := range modified {
		if m.Before(cutoff) {
			continue
		}
		if isRestDay(s.SelectedRestDays, m.In(t.loc())) {
			violated = true
			break
		}
	}
	out := clone(s)
	out.IsStreakViolated = violated
	if violated {
		out.CurrentStreak = 1
	}
	return out
}

// ResetViolation clears a violation and starts counting from scratch.
func (t Tracker) ResetViolation(s domain.StreakState) domain.StreakState {
	out := clone(s)
	out.IsStreakViolated = false
	out.CurrentStreak = 1
	out.LastActiveDate = nil
	return out
}

// ToggleRestDay adds or removes a weekday (0 = Sunday) from the rest days.
func ToggleRestDay(s domain.StreakState, day int) (domain.StreakState, error) {
	if err := validDay(day); err != nil {
		return s, err
	}
	out := clone(s)
	if i := slices.Index(out.SelectedRestDays, day); i >= 0 {
		out.SelectedRestDays = slices.Delete(out.SelectedRestDays, i, i+1)
		return out, nil
	}
	if len(out.SelectedRestDays) >= MaxRestDays {
		return s, &domain.ValidationError{Field: "restDays", Reason: fmt.Sprintf("at most %d rest days", MaxRestDays)}
	}
	out.SelectedRestDays = append(out.SelectedRestDays, day)
	return out, nil
}

func SetRestDays(s domain.StreakState, days []int) (domain.StreakState, error) {
	if len(days) > MaxRestDays {
		return s, &domain.ValidationError{Field: "restDays", Reason: fmt.Sprintf("at most %d rest days", MaxRestDays)}
	}
	set := make([]int, 0, len(days))
	for _, d := range days {
		if err := validDay(d); err != nil {
			return s, err
		}
		if !slices.Contains(set, d) {
			set = append(set, d)
		}
	}
	out := clone(s)
	out.SelectedRestDays = set
	return out, nil
}

func (t Tracker) lastActive(s domain.StreakState) (time.Time, bool) {
	if s.LastActiveDate == nil {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DateLayout, *s.LastActiveDate, t.loc())
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// missedWorkDays counts the work days strictly between from and to.
func missedWorkDays(restDays []int, from, to time.Time) int {
	n := 0
	for d := from.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		if !isRestDay(restDays, d) {
			n++
		}
	}
	return n
}

func isRestDay(restDays []int, d time.Time) bool {
	return slices.Contains(restDays, int(d.Weekday()))
}

func validDay(day int) error {
	if day < 0 || day > 6 {
		return &domain.ValidationError{Field: "restDays", Reason: fmt.Sprintf("weekday %d out of range 0-6", day)}
	}
	return nil
}

func clone(s domain.StreakState) domain.StreakState {
	out := s
	out.SelectedRestDays = slices.Clone(s.SelectedRestDays)
	if out.SelectedRestDays == nil {
		out.SelectedRestDays = []int{}
	}
	if s.LastActiveDate != nil {
		v := *s.LastActiveDate
		out.LastActiveDate = &v
	}
	return out
}
