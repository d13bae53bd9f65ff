// organizer/collections.go
package organizer

import (
	"slices"
	"time"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/lists"
	"github.com/ViniZap4/stride-server/search"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/streak"
	"github.com/ViniZap4/stride-server/trash"
)

// Search matches term against folder names and note titles and contents.
// With commit set, a non-blank term is also recorded in the history.
func (o *Organizer) Search(term string, commit bool) []search.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	results := search.Search(o.ws.Folders, term)
	if commit {
		if next := search.Commit(o.history, term); !slices.Equal(next, o.history) {
			o.history = next
			o.save("search.commit", store.KeySearchHistory)
		}
	}
	return results
}

func (o *Organizer) SearchHistory() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.history
}

func (o *Organizer) RemoveSearchTerm(term string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if next := search.Remove(o.history, term); !slices.Equal(next, o.history) {
		o.history = next
		o.save("search.remove", store.KeySearchHistory)
	}
}

func (o *Organizer) ClearSearchHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = []string{}
	o.save("search.clear", store.KeySearchHistory)
}

// Trash lists trashed items in the order they were deleted.
func (o *Organizer) Trash() []domain.TrashItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ws.Trash
}

func (o *Organizer) RestoreTrash(id string) error {
	return o.RestoreTrashMany([]string{id})
}

// RestoreTrashMany restores every listed item it can. Missing ids are
// reported in the returned error after the others have been restored.
func (o *Organizer) RestoreTrashMany(ids []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	ws, err := trash.RestoreMany(o.ws, ids)
	changed := len(ws.Trash) != len(o.ws.Trash)
	o.ws = ws
	if changed {
		o.treeChanged("trash.restore", store.KeyTrash)
	}
	return o.logLookup("trash.restore", err)
}

func (o *Organizer) DeleteTrash(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	items, err := trash.DeletePermanently(o.ws.Trash, id)
	if err != nil {
		return o.logLookup("trash.delete", err)
	}
	o.ws.Trash = items
	o.save("trash.delete", store.KeyTrash)
	return nil
}

// DeleteTrashMany removes the listed items for good and returns how many
// were found.
func (o *Organizer) DeleteTrashMany(ids []string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	items := trash.DeleteManyPermanently(o.ws.Trash, ids)
	n := len(o.ws.Trash) - len(items)
	if n > 0 {
		o.ws.Trash = items
		o.save("trash.delete", store.KeyTrash)
	}
	return n
}

// PurgeTrash drops items older than the retention period and returns how
// many went.
func (o *Organizer) PurgeTrash() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept, purged := trash.PurgeExpired(o.ws.Trash, o.now(), o.opts.Retention)
	if purged > 0 {
		o.ws.Trash = kept
		o.save("trash.purge", store.KeyTrash)
		o.opts.Metrics.TrashPurged(purged)
	}
	return purged
}

func (o *Organizer) Bookmarks() []domain.Bookmark {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.bookmarks
}

func (o *Organizer) AddBookmark(title, color string) (domain.Bookmark, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, b, err := lists.AddBookmark(o.bookmarks, title, color, o.now())
	if err != nil {
		return domain.Bookmark{}, err
	}
	o.bookmarks = list
	o.save("bookmark.add", store.KeyBookmarks)
	return b, nil
}

func (o *Organizer) DeleteBookmark(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, err := lists.DeleteBookmark(o.bookmarks, id)
	if err != nil {
		return o.logLookup("bookmark.delete", err)
	}
	o.bookmarks = list
	o.save("bookmark.delete", store.KeyBookmarks)
	return nil
}

// Todos returns all todos, or only pending or completed ones.
func (o *Organizer) Todos(filter string) []domain.TodoItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch filter {
	case "pending":
		return lists.Pending(o.todos)
	case "completed":
		return lists.Completed(o.todos)
	}
	return o.todos
}

func (o *Organizer) AddTodo(title string, date time.Time, at string) (domain.TodoItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, item, err := lists.AddTodo(o.todos, title, date, at, o.now(), o.opts.PickColor)
	if err != nil {
		return domain.TodoItem{}, err
	}
	o.todos = list
	o.save("todo.add", store.KeyTodos)
	return item, nil
}

func (o *Organizer) ToggleTodo(id string) (domain.TodoItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, item, err := lists.ToggleTodo(o.todos, id)
	if err != nil {
		return domain.TodoItem{}, o.logLookup("todo.toggle", err)
	}
	o.todos = list
	o.save("todo.toggle", store.KeyTodos)
	return item, nil
}

func (o *Organizer) DeleteTodo(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, err := lists.DeleteTodo(o.todos, id)
	if err != nil {
		return o.logLookup("todo.delete", err)
	}
	o.todos = list
	o.save("todo.delete", store.KeyTodos)
	return nil
}

// Dictionary returns the entries matching term, pinned first.
func (o *Organizer) Dictionary(term string) []domain.DictionaryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return lists.FilterEntries(o.dictionary, term)
}

func (o *Organizer) DictionaryEntry(id string) (domain.DictionaryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := lists.FindEntry(o.dictionary, id)
	if !ok {
		return e, o.logLookup("dictionary.get", &domain.NotFoundError{Kind: "dictionary entry", Key: id})
	}
	return e, nil
}

func (o *Organizer) AddEntry(word, definition string) (domain.DictionaryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, e, err := lists.AddEntry(o.dictionary, word, definition)
	if err != nil {
		return domain.DictionaryEntry{}, err
	}
	o.dictionary = list
	o.save("dictionary.add", store.KeyDictionary)
	return e, nil
}

func (o *Organizer) UpdateEntry(id, word, definition string) (domain.DictionaryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, e, err := lists.UpdateEntry(o.dictionary, id, word, definition)
	if err != nil {
		return domain.DictionaryEntry{}, o.logLookup("dictionary.update", err)
	}
	o.dictionary = list
	o.save("dictionary.update", store.KeyDictionary)
	return e, nil
}

func (o *Organizer) TogglePinEntry(id string) (domain.DictionaryEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, e, err := lists.TogglePinEntry(o.dictionary, id)
	if err != nil {
		return domain.DictionaryEntry{}, o.logLookup("dictionary.pin", err)
	}
	o.dictionary = list
	o.save("dictionary.pin", store.KeyDictionary)
	return e, nil
}

func (o *Organizer) DeleteEntry(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	list, err := lists.DeleteEntry(o.dictionary, id)
	if err != nil {
		return o.logLookup("dictionary.delete", err)
	}
	o.dictionary = list
	o.save("dictionary.delete", store.KeyDictionary)
	return nil
}

type StreakStatus struct {
	State  domain.StreakState `json:"state"`
	Policy streak.Policy      `json:"policy"`
	// PreviousWorkDay is the last day before today that counts toward the
	// streak.
	PreviousWorkDay string `json:"previousWorkDay"`
}

// Streak returns the streak as of now, decaying it first if work days were
// missed since the last activity.
func (o *Organizer) Streak() StreakStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	if next := o.opts.Streak.Decay(o.streak, now); !sameStreak(next, o.streak) {
		o.streak = next
		o.save("streak.decay", store.KeyStreak)
	}
	return o.streakStatus(now)
}

func (o *Organizer) streakStatus(now time.Time) StreakStatus {
	loc := o.opts.Streak.Location
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return StreakStatus{
		State:           o.streak,
		Policy:          o.opts.Streak.Policy,
		PreviousWorkDay: streak.PreviousWorkDay(o.streak.SelectedRestDays, today).Format(streak.DateLayout),
	}
}

func (o *Organizer) ToggleRestDay(day int) (StreakStatus, error) {
	return o.editRestDays("streak.rest-day", func(s domain.StreakState) (domain.StreakState, error) {
		return streak.ToggleRestDay(s, day)
	})
}

func (o *Organizer) SetRestDays(days []int) (StreakStatus, error) {
	return o.editRestDays("streak.rest-days", func(s domain.StreakState) (domain.StreakState, error) {
		return streak.SetRestDays(s, days)
	})
}

func (o *Organizer) ResetStreakViolation() StreakStatus {
	st, _ := o.editStreak("streak.reset", func(s domain.StreakState) (domain.StreakState, error) {
		return o.opts.Streak.ResetViolation(s), nil
	})
	return st
}

func (o *Organizer) editStreak(op string, fn func(domain.StreakState) (domain.StreakState, error)) (StreakStatus, error) {
	return o.applyStreak(op, false, fn)
}

// editRestDays re-evaluates activity and violations against the new rest
// days before saving.
func (o *Organizer) editRestDays(op string, fn func(domain.StreakState) (domain.StreakState, error)) (StreakStatus, error) {
	return o.applyStreak(op, true, fn)
}

func (o *Organizer) applyStreak(op string, refresh bool, fn func(domain.StreakState) (domain.StreakState, error)) (StreakStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next, err := fn(o.streak)
	if err != nil {
		return StreakStatus{}, err
	}
	o.streak = next
	if refresh {
		o.refreshStreak()
	}
	o.save(op, store.KeyStreak)
	return o.streakStatus(o.now()), nil
}
