// tree/listing.go
package tree

import (
	"sort"
	"strings"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

type FolderEntry struct {
	Folder *domain.Folder `json:"folder"`
	Path   []string       `json:"path"`
}

// SortFolders returns the folders ordered pinned first, then by name
// without regard to case.
func SortFolders(folders []*domain.Folder) []*domain.Folder {
	out := make([]*domain.Folder, len(folders))
	copy(out, folders)
	sort.SliceStable(out, func(i, j int) bool {
		return folderLess(out[i], out[j])
	})
	return out
}

// AllFolders flattens the forest into a single listing in display order.
func AllFolders(forest []*domain.Folder) []FolderEntry {
	var out []FolderEntry
	Walk(forest, func(f *domain.Folder, path []string) bool {
		out = append(out, FolderEntry{Folder: f, Path: path})
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return folderLess(out[i].Folder, out[j].Folder)
	})
	return out
}

func folderLess(a, b *domain.Folder) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

type Event string

const (
	EventCreated  Event = "created"
	EventModified Event = "modified"
	EventOpened   Event = "opened"
)

type RecentNote struct {
	Note      *domain.Note `json:"note"`
	Path      []string     `json:"path"`
	Timestamp time.Time    `json:"timestamp"`
	Event     Event        `json:"event"`
}

const DefaultRecentLimit = 10

// RecentNotes lists notes by their most recent lifecycle timestamp, newest
// first. Notes without any timestamp are left out.
func RecentNotes(forest []*domain.Folder, limit int) []RecentNote {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	var out []RecentNote
	Walk(forest, func(f *domain.Folder, path []string) bool {
		for _, n := range f.Notes {
			if ts, ev, ok := latest(n); ok {
				out = append(out, RecentNote{Note: n, Path: path, Timestamp: ts, Event: ev})
			}
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func latest(n *domain.Note) (time.Time, Event, bool) {
	var (
		best  time.Time
		event Event
		found bool
	)
	for _, c := range []struct {
		t  *time.Time
		ev Event
	}{
		{n.CreatedAt, EventCreated},
		{n.ModifiedAt, EventModified},
		{n.LastOpenedAt, EventOpened},
	} {
		if c.t == nil {
			continue
		}
		if !found || c.t.After(best) {
			best, event, found = *c.t, c.ev, true
		}
	}
	return best, event, found
}

// ActivityOn reports whether any note was created, modified or opened on
// the calendar day of day, in loc.
func ActivityOn(forest []*domain.Folder, day time.Time, loc *time.Location) bool {
	y, m, d := day.In(loc).Date()
	active := false
	Walk(forest, func(f *domain.Folder, _ []string) bool {
		for _, n := range f.Notes {
			for _, t := range []*time.Time{n.CreatedAt, n.ModifiedAt, n.LastOpenedAt} {
				if t == nil {
					continue
				}
				ty, tm, td := t.In(loc).Date()
				if ty == y && tm == m && td == d {
					active = true
					return false
				}
			}
		}
		return true
	})
	return active
}
