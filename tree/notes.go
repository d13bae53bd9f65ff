// tree/notes.go
package tree

import (
	"strings"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

type NoteLocation struct {
	Note *domain.Note `json:"note"`
	Path []string     `json:"path"`
}

// NoteChanges carries an edit of a note; nil fields are left unchanged.
type NoteChanges struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NewNote builds a note with a fresh id and all three timestamps set to now.
func NewNote(title, content string, now time.Time) *domain.Note {
	if strings.TrimSpace(title) == "" {
		title = "New Note"
	}
	return &domain.Note{
		ID:           domain.NewID(),
		Title:        title,
		Content:      content,
		CreatedAt:    domain.Timestamp(now),
		ModifiedAt:   domain.Timestamp(now),
		LastOpenedAt: domain.Timestamp(now),
	}
}

// InsertNote appends note to the folder with the given id, found by a
// depth-first search.
func InsertNote(forest []*domain.Folder, folderID string, note *domain.Note) ([]*domain.Folder, error) {
	path, ok := FolderPathByID(forest, folderID)
	if !ok {
		return nil, &domain.NotFoundError{Kind: "folder", Key: folderID}
	}
	return InsertNoteAt(forest, path, note)
}

// InsertNoteAt appends note to the folder at path.
func InsertNoteAt(forest []*domain.Folder, path []string, note *domain.Note) ([]*domain.Folder, error) {
	return UpdateFolder(forest, path, func(f *domain.Folder) (*domain.Folder, error) {
		c := *f
		c.Notes = appendNote(f.Notes, note)
		return &c, nil
	})
}

// RemoveNote detaches the note from the folder at folderPath.
func RemoveNote(forest []*domain.Folder, folderPath []string, noteID string) ([]*domain.Folder, *domain.Note, error) {
	var removed *domain.Note
	out, err := UpdateFolder(forest, folderPath, func(f *domain.Folder) (*domain.Folder, error) {
		i := indexNote(f.Notes, noteID)
		if i < 0 {
			return nil, &domain.NotFoundError{Kind: "note", Key: noteID}
		}
		removed = f.Notes[i]
		c := *f
		c.Notes = removeNoteAt(f.Notes, i)
		return &c, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, removed, nil
}

// UpdateNote applies changes to a note and stamps ModifiedAt.
func UpdateNote(forest []*domain.Folder, folderPath []string, noteID string, changes NoteChanges, now time.Time) ([]*domain.Folder, *domain.Note, error) {
	return updateNote(forest, folderPath, noteID, func(n *domain.Note) {
		if changes.Title != nil {
			n.Title = *changes.Title
		}
		if changes.Content != nil {
			n.Content = *changes.Content
		}
		n.ModifiedAt = domain.Timestamp(now)
	})
}

// UpdateNoteLastOpened stamps LastOpenedAt on the note at path.
func UpdateNoteLastOpened(forest []*domain.Folder, path []string, noteID string, now time.Time) ([]*domain.Folder, *domain.Note, error) {
	return updateNote(forest, path, noteID, func(n *domain.Note) {
		n.LastOpenedAt = domain.Timestamp(now)
	})
}

func updateNote(forest []*domain.Folder, folderPath []string, noteID string, edit func(*domain.Note)) ([]*domain.Folder, *domain.Note, error) {
	var updated *domain.Note
	out, err := UpdateFolder(forest, folderPath, func(f *domain.Folder) (*domain.Folder, error) {
		i := indexNote(f.Notes, noteID)
		if i < 0 {
			return nil, &domain.NotFoundError{Kind: "note", Key: noteID}
		}
		updated = f.Notes[i].Clone()
		edit(updated)
		notes := make([]*domain.Note, len(f.Notes))
		copy(notes, f.Notes)
		notes[i] = updated
		c := *f
		c.Notes = notes
		return &c, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, updated, nil
}

// FindNoteByID searches every folder, its own notes before its subfolders,
// and returns the note with the path of the folder that holds it.
func FindNoteByID(forest []*domain.Folder, id string) (NoteLocation, error) {
	if loc, ok := findNote(forest, nil, id); ok {
		return loc, nil
	}
	return NoteLocation{}, &domain.NotFoundError{Kind: "note", Key: id}
}

func findNote(level []*domain.Folder, parent []string, id string) (NoteLocation, bool) {
	for _, f := range level {
		path := Join(parent, f.Name)
		if i := indexNote(f.Notes, id); i >= 0 {
			return NoteLocation{Note: f.Notes[i], Path: path}, true
		}
		if loc, ok := findNote(f.Subfolders, path, id); ok {
			return loc, true
		}
	}
	return NoteLocation{}, false
}

// FolderPathByID returns the full path of the folder with the given id.
func FolderPathByID(forest []*domain.Folder, id string) ([]string, bool) {
	var found []string
	Walk(forest, func(f *domain.Folder, path []string) bool {
		if f.ID == id {
			found = path
			return false
		}
		return true
	})
	return found, found != nil
}
