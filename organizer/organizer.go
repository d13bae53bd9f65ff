// organizer/organizer.go
package organizer

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/lists"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/streak"
	"github.com/ViniZap4/stride-server/trash"
	"github.com/ViniZap4/stride-server/tree"
)

type Options struct {
	Clock     func() time.Time
	Logger    zerolog.Logger
	Streak    streak.Tracker
	Retention time.Duration
	Metrics   *metrics.Metrics
	// OnChange is called with the store key of every collection that
	// changed, after it has been written.
	OnChange func(key string)
	// PickColor chooses todo colors; lists.RandomColor when nil.
	PickColor lists.Picker
}

// Organizer owns the application state. Every exported method runs under
// one mutex, and every successful change is written to the store before
// the method returns. Store failures are logged and counted; the in-memory
// state stays authoritative.
type Organizer struct {
	mu    sync.Mutex
	store store.Store
	opts  Options
	log   zerolog.Logger

	ws         domain.Workspace
	bookmarks  []domain.Bookmark
	todos      []domain.TodoItem
	dictionary []domain.DictionaryEntry
	streak     domain.StreakState
	history    []string
}

func New(s store.Store, opts Options) *Organizer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Retention <= 0 {
		opts.Retention = trash.DefaultRetention
	}
	if opts.Streak.Policy == "" {
		opts.Streak.Policy = streak.PolicyGap
	}
	if opts.Streak.Location == nil {
		opts.Streak.Location = time.Local
	}
	o := &Organizer{
		store: s,
		opts:  opts,
		log:   opts.Logger.With().Str("component", "organizer").Logger(),
	}
	o.load()
	return o
}

// Reload discards the in-memory state and reads every collection from the
// store again.
func (o *Organizer) Reload() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.load()
	for _, key := range store.TrackedKeys {
		o.notify(key)
	}
}

func (o *Organizer) load() {
	o.ws = domain.Workspace{Folders: []*domain.Folder{}, Trash: []domain.TrashItem{}}
	o.bookmarks = []domain.Bookmark{}
	o.todos = []domain.TodoItem{}
	o.dictionary = []domain.DictionaryEntry{}
	o.streak = domain.NewStreakState()
	o.history = []string{}

	read(o, store.KeyFolders, &o.ws.Folders)
	read(o, store.KeyTrash, &o.ws.Trash)
	read(o, store.KeyBookmarks, &o.bookmarks)
	read(o, store.KeyTodos, &o.todos)
	read(o, store.KeyDictionary, &o.dictionary)
	var st domain.StreakState
	if ok, err := store.GetJSON(o.store, store.KeyStreak, &st); err != nil {
		o.log.Error().Err(err).Str("key", store.KeyStreak).Msg("cannot load streak, starting over")
	} else if ok {
		o.streak = st
	}
	read(o, store.KeySearchHistory, &o.history)

	o.ws.Folders = slices.DeleteFunc(o.ws.Folders, func(f *domain.Folder) bool { return f == nil })
	for _, f := range o.ws.Folders {
		f.Normalize()
	}

	folders, notes := tree.NewIndex(o.ws.Folders).Len()
	o.log.Info().
		Int("folders", folders).
		Int("notes", notes).
		Int("trash", len(o.ws.Trash)).
		Msg("state loaded")

	if next := o.opts.Streak.Decay(o.streak, o.now()); !sameStreak(next, o.streak) {
		o.streak = next
		o.save("streak.decay", store.KeyStreak)
	}
}

// read decodes one collection into dst. A missing key, a null value or a
// broken value leaves the default in place; broken values are logged.
func read[T any](o *Organizer, key string, dst *[]T) {
	var v []T
	ok, err := store.GetJSON(o.store, key, &v)
	if err != nil {
		o.log.Error().Err(err).Str("key", key).Msg("cannot load collection, starting empty")
		return
	}
	if ok && v != nil {
		*dst = v
	}
}

func (o *Organizer) now() time.Time {
	return o.opts.Clock()
}

func (o *Organizer) value(key string) any {
	switch key {
	case store.KeyFolders:
		return o.ws.Folders
	case store.KeyTrash:
		return o.ws.Trash
	case store.KeyBookmarks:
		return o.bookmarks
	case store.KeyTodos:
		return o.todos
	case store.KeyDictionary:
		return o.dictionary
	case store.KeyStreak:
		return o.streak
	case store.KeySearchHistory:
		return o.history
	}
	return nil
}

// save writes the given collections, counts the mutation and notifies
// listeners.
func (o *Organizer) save(op string, keys ...string) {
	for _, key := range keys {
		if err := store.SetJSON(o.store, key, o.value(key)); err != nil {
			perr := &domain.PersistenceError{Op: "save", Key: key, Err: err}
			o.opts.Metrics.PersistenceError("store")
			o.log.Error().Err(perr).Str("op", op).Msg("state not persisted")
		}
		o.notify(key)
	}
	o.opts.Metrics.Mutation(op)
	o.log.Debug().Str("op", op).Strs("keys", keys).Msg("state changed")
}

func (o *Organizer) notify(key string) {
	if o.opts.OnChange != nil {
		o.opts.OnChange(key)
	}
}

// treeChanged saves the tree (and any extra collections) and re-evaluates
// the streak against the new tree.
func (o *Organizer) treeChanged(op string, extra ...string) {
	keys := append([]string{store.KeyFolders}, extra...)
	if o.refreshStreak() {
		keys = append(keys, store.KeyStreak)
	}
	o.save(op, keys...)
}

func (o *Organizer) refreshStreak() bool {
	now := o.now()
	tr := o.opts.Streak
	next := tr.Decay(o.streak, now)
	if tree.ActivityOn(o.ws.Folders, now, tr.Location) {
		next = tr.RecordActivity(next, now)
	}
	if tr.Policy == streak.PolicyRestDay {
		next = tr.CheckViolations(next, modifiedTimes(o.ws.Folders), now)
	}
	if sameStreak(next, o.streak) {
		return false
	}
	o.streak = next
	return true
}

func modifiedTimes(forest []*domain.Folder) []time.Time {
	var out []time.Time
	tree.Walk(forest, func(f *domain.Folder, _ []string) bool {
		for _, n := range f.Notes {
			if n.ModifiedAt != nil {
				out = append(out, *n.ModifiedAt)
			}
		}
		return true
	})
	return out
}

func sameStreak(a, b domain.StreakState) bool {
	lastEq := (a.LastActiveDate == nil && b.LastActiveDate == nil) ||
		(a.LastActiveDate != nil && b.LastActiveDate != nil && *a.LastActiveDate == *b.LastActiveDate)
	return lastEq &&
		a.CurrentStreak == b.CurrentStreak &&
		a.IsStreakViolated == b.IsStreakViolated &&
		slices.Equal(a.SelectedRestDays, b.SelectedRestDays)
}

// logLookup records failed lookups at debug level; callers still get err.
func (o *Organizer) logLookup(op string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		o.log.Debug().Str("op", op).Str("kind", nf.Kind).Str("key", nf.Key).Msg("lookup failed")
	}
	return err
}
