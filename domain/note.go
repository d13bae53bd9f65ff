// domain/note.go
package domain

import (
	"encoding/json"
	"time"
)

type Note struct {
	ID           string     `json:"id" yaml:"id"`
	Title        string     `json:"title" yaml:"title"`
	Content      string     `json:"content" yaml:"-"`
	CreatedAt    *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	ModifiedAt   *time.Time `json:"modifiedAt,omitempty" yaml:"modified_at,omitempty"`
	LastOpenedAt *time.Time `json:"lastOpenedAt,omitempty" yaml:"last_opened_at,omitempty"`
}

// Clone returns a copy of the note that shares no timestamp pointers with n.
func (n *Note) Clone() *Note {
	c := *n
	c.CreatedAt = copyTime(n.CreatedAt)
	c.ModifiedAt = copyTime(n.ModifiedAt)
	c.LastOpenedAt = copyTime(n.LastOpenedAt)
	return &c
}

type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Subfolders []*Folder `json:"subfolders"`
	Notes      []*Note   `json:"notes"`
	IsPinned   bool      `json:"isPinned,omitempty"`
}

// Normalize replaces nil child slices with empty ones, recursively, so the
// folder always encodes with arrays instead of null.
func (f *Folder) Normalize() {
	if f.Subfolders == nil {
		f.Subfolders = []*Folder{}
	}
	if f.Notes == nil {
		f.Notes = []*Note{}
	}
	for _, sub := range f.Subfolders {
		sub.Normalize()
	}
}

func (f *Folder) UnmarshalJSON(data []byte) error {
	type plain Folder
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Folder(p)
	f.Normalize()
	return nil
}

// NoteCount counts the notes in f and all of its descendants.
func (f *Folder) NoteCount() int {
	n := len(f.Notes)
	for _, sub := range f.Subfolders {
		n += sub.NoteCount()
	}
	return n
}

func Timestamp(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
