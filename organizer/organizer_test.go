package organizer

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/markup"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/streak"
	"github.com/ViniZap4/stride-server/tree"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) record(key string) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...)
}

// monday is 2025-06-02 10:00 UTC.
func newOrganizer(t *testing.T, s store.Store) (*Organizer, *clock, *recorder) {
	t.Helper()
	c := &clock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	o := New(s, Options{
		Clock:     c.now,
		Logger:    zerolog.Nop(),
		Streak:    streak.Tracker{Policy: streak.PolicyGap, Location: time.UTC},
		Metrics:   metrics.New(),
		OnChange:  rec.record,
		PickColor: func(int) int { return 0 },
	})
	return o, c, rec
}

func TestChangesArePersistedAndAnnounced(t *testing.T) {
	s := store.NewMemory()
	o, _, rec := newOrganizer(t, s)

	f, err := o.CreateFolder(nil, "Projects")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"Projects"}, "Budget Report", "Q1 numbers")
	require.NoError(t, err)

	var stored []*domain.Folder
	ok, err := store.GetJSON(s, store.KeyFolders, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, stored, 1)
	assert.Equal(t, f.ID, stored[0].ID)
	assert.Equal(t, n.ID, stored[0].Notes[0].ID)
	assert.Contains(t, rec.seen(), store.KeyFolders)

	again, _, _ := newOrganizer(t, s)
	loc, err := again.Note(n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Projects"}, loc.Path)
}

func TestDuplicateFolderNameIsRejected(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "Work")
	require.NoError(t, err)
	_, err = o.CreateFolder(nil, "Work")
	var dup *domain.DuplicateNameError
	assert.True(t, errors.As(err, &dup))
	assert.Len(t, o.Tree(), 1)
}

func TestDeleteAndRestoreNote(t *testing.T) {
	s := store.NewMemory()
	o, _, _ := newOrganizer(t, s)
	_, err := o.CreateFolder(nil, "Inbox")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"Inbox"}, "Idea", "text")
	require.NoError(t, err)

	item, err := o.DeleteNote(n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, item.ID)
	_, err = o.Note(n.ID)
	var nf *domain.NotFoundError
	assert.True(t, errors.As(err, &nf))

	var stored []domain.TrashItem
	_, err = store.GetJSON(s, store.KeyTrash, &stored)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	require.NoError(t, o.RestoreTrash(item.ID))
	loc, err := o.Note(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "text", loc.Note.Content)
	assert.Empty(t, o.Trash())
}

func TestDeleteFolderAndPurge(t *testing.T) {
	o, c, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "Old")
	require.NoError(t, err)
	_, err = o.DeleteFolder([]string{"Old"})
	require.NoError(t, err)
	assert.Empty(t, o.Tree())

	c.advance(14 * 24 * time.Hour)
	assert.Equal(t, 0, o.PurgeTrash())
	c.advance(2 * 24 * time.Hour)
	assert.Equal(t, 1, o.PurgeTrash())
	assert.Empty(t, o.Trash())
}

func TestStreakFollowsNoteActivity(t *testing.T) {
	o, c, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "Daily")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"Daily"}, "Log", "")
	require.NoError(t, err)

	st := o.Streak()
	assert.Equal(t, 1, st.State.CurrentStreak)
	require.NotNil(t, st.State.LastActiveDate)
	assert.Equal(t, "2025-06-02", *st.State.LastActiveDate)

	c.advance(24 * time.Hour)
	content := "tuesday"
	_, err = o.UpdateNote(n.ID, tree.NoteChanges{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, 2, o.Streak().State.CurrentStreak)

	c.advance(2 * 24 * time.Hour) // Thursday, Wednesday missed
	st = o.Streak()
	assert.Equal(t, 1, st.State.CurrentStreak)
	assert.Nil(t, st.State.LastActiveDate)
	assert.Equal(t, "2025-06-04", st.PreviousWorkDay)
}

func TestRestDays(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.ToggleRestDay(0)
	require.NoError(t, err)
	st, err := o.SetRestDays([]int{0, 6})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6}, st.State.SelectedRestDays)
	_, err = o.ToggleRestDay(3)
	assert.Error(t, err)
	assert.False(t, o.ResetStreakViolation().State.IsStreakViolated)
}

func TestRestDayChangeRechecksViolations(t *testing.T) {
	c := &clock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	o := New(store.NewMemory(), Options{
		Clock:  c.now,
		Logger: zerolog.Nop(),
		Streak: streak.Tracker{Policy: streak.PolicyRestDay, Location: time.UTC},
	})
	_, err := o.CreateFolder(nil, "Notes")
	require.NoError(t, err)
	_, err = o.CreateNote([]string{"Notes"}, "Monday", "edited on a Monday")
	require.NoError(t, err)
	require.False(t, o.Streak().State.IsStreakViolated)

	st, err := o.ToggleRestDay(1)
	require.NoError(t, err)
	assert.True(t, st.State.IsStreakViolated, "the note was edited on what is now a rest day")
	assert.Equal(t, 1, st.State.CurrentStreak)

	st, err = o.ToggleRestDay(1)
	require.NoError(t, err)
	assert.False(t, st.State.IsStreakViolated)
}

func TestFormatAndRender(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "Notes")
	require.NoError(t, err)
	entry, err := o.AddEntry("term", "def")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"Notes"}, "Words", "hello world")
	require.NoError(t, err)

	updated, err := o.FormatNote(n.ID, 6, 11, markup.Format{Kind: markup.Bold})
	require.NoError(t, err)
	assert.Equal(t, "hello **world**", updated.Content)

	_, err = o.FormatNote(n.ID, 0, 5, markup.Format{Kind: markup.DictionaryRef, EntryID: entry.ID})
	require.NoError(t, err)
	html, err := o.RenderNote(n.ID)
	require.NoError(t, err)
	assert.Equal(t,
		`<p><span class="dictionary-ref" data-entry-id="`+entry.ID+`" title="def">hello</span> <strong>world</strong></p>`,
		html)
}

func TestSearchHistory(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "Projects")
	require.NoError(t, err)
	_, err = o.CreateNote([]string{"Projects"}, "Budget Report", "Q1 numbers")
	require.NoError(t, err)

	results := o.Search("budget", true)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"Projects"}, results[0].Path)
	o.Search("projects", false)
	assert.Equal(t, []string{"budget"}, o.SearchHistory())

	o.RemoveSearchTerm("budget")
	assert.Empty(t, o.SearchHistory())
}

func TestCollections(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())

	b, err := o.AddBookmark("Read", "")
	require.NoError(t, err)
	require.NoError(t, o.DeleteBookmark(b.ID))
	assert.Empty(t, o.Bookmarks())

	todo, err := o.AddTodo("Ship", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "10:00")
	require.NoError(t, err)
	assert.Equal(t, "gray", todo.Color)
	_, err = o.ToggleTodo(todo.ID)
	require.NoError(t, err)
	assert.Len(t, o.Todos("completed"), 1)
	assert.Empty(t, o.Todos("pending"))

	e, err := o.AddEntry("go", "a language")
	require.NoError(t, err)
	e, err = o.TogglePinEntry(e.ID)
	require.NoError(t, err)
	assert.True(t, e.IsPinned)
	require.NoError(t, o.DeleteEntry(e.ID))
	_, err = o.DictionaryEntry(e.ID)
	assert.Error(t, err)
}

func TestBrokenCollectionStartsEmpty(t *testing.T) {
	s := store.NewMemory()
	require.NoError(t, s.Set(store.KeyFolders, "{broken"))
	require.NoError(t, s.Set(store.KeyBookmarks, "null"))
	o, _, _ := newOrganizer(t, s)
	assert.NotNil(t, o.Tree())
	assert.Empty(t, o.Tree())
	assert.NotNil(t, o.Bookmarks())
}

type failingStore struct{ store.Store }

func (failingStore) Set(string, string) error { return errors.New("disk full") }

func TestStoreFailureKeepsMemoryState(t *testing.T) {
	o, _, _ := newOrganizer(t, failingStore{store.NewMemory()})
	_, err := o.CreateFolder(nil, "Still here")
	require.NoError(t, err)
	assert.Len(t, o.Tree(), 1)
}

func TestReload(t *testing.T) {
	s := store.NewMemory()
	o, _, rec := newOrganizer(t, s)
	require.NoError(t, store.SetJSON(s, store.KeyBookmarks, []domain.Bookmark{{ID: "b1", Title: "Remote", Color: "#000000"}}))
	o.Reload()
	require.Len(t, o.Bookmarks(), 1)
	assert.Equal(t, "Remote", o.Bookmarks()[0].Title)
	assert.Contains(t, rec.seen(), store.KeyBookmarks)
}

func TestExportImport(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "A")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"A"}, "Note", "body")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, o.Export(dir))

	other, _, _ := newOrganizer(t, store.NewMemory())
	require.NoError(t, other.Import(dir))
	loc, err := other.Note(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", loc.Note.Content)
	assert.Equal(t, []string{"A"}, loc.Path)
}

func TestNoteOperations(t *testing.T) {
	o, _, _ := newOrganizer(t, store.NewMemory())
	_, err := o.CreateFolder(nil, "A")
	require.NoError(t, err)
	_, err = o.CreateFolder(nil, "B")
	require.NoError(t, err)
	n, err := o.CreateNote([]string{"A"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "New Note", n.Title)

	require.NoError(t, o.MoveNote(n.ID, []string{"B"}))
	loc, err := o.OpenNote(n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, loc.Path)

	dup, err := o.DuplicateNote(n.ID)
	require.NoError(t, err)
	assert.NotEqual(t, n.ID, dup.ID)
	assert.Len(t, o.RecentNotes(0), 2)

	pinned, err := o.TogglePin([]string{"B"})
	require.NoError(t, err)
	assert.True(t, pinned)
	children, err := o.Children(nil)
	require.NoError(t, err)
	assert.Equal(t, "B", children[0].Name)

	require.NoError(t, o.RenameFolder([]string{"B"}, "C"))
	require.NoError(t, o.MoveFolder([]string{"C"}, []string{"A"}))
	loc, err = o.Note(n.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, loc.Path)

	copied, err := o.DuplicateFolder([]string{"A"})
	require.NoError(t, err)
	assert.Equal(t, "A - Copy", copied.Name)
	assert.Len(t, o.Folders(), 4)
}
