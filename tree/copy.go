// tree/copy.go
package tree

import (
	"fmt"
	"slices"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

const copySuffix = " - Copy"

// DeepCopy clones f and every descendant. With freshIDs set, every folder
// and note in the copy gets a new id.
func DeepCopy(f *domain.Folder, freshIDs bool) *domain.Folder {
	c := &domain.Folder{
		ID:         f.ID,
		Name:       f.Name,
		IsPinned:   f.IsPinned,
		Subfolders: make([]*domain.Folder, 0, len(f.Subfolders)),
		Notes:      make([]*domain.Note, 0, len(f.Notes)),
	}
	if freshIDs {
		c.ID = domain.NewID()
	}
	for _, n := range f.Notes {
		nc := n.Clone()
		if freshIDs {
			nc.ID = domain.NewID()
		}
		c.Notes = append(c.Notes, nc)
	}
	for _, sub := range f.Subfolders {
		c.Subfolders = append(c.Subfolders, DeepCopy(sub, freshIDs))
	}
	return c
}

// DuplicateFolder appends a deep copy of the folder at path to the same
// sibling group. Every descendant of the copy has a fresh id, so the copy
// never aliases the original.
func DuplicateFolder(forest []*domain.Folder, path []string) ([]*domain.Folder, *domain.Folder, error) {
	src, err := FindFolder(forest, path)
	if err != nil {
		return nil, nil, err
	}
	parentPath, _ := Split(path)
	dup := DeepCopy(src, true)
	dup.IsPinned = false
	out, err := updateChildren(forest, parentPath, func(children []*domain.Folder) ([]*domain.Folder, error) {
		dup.Name = UniqueName(children, src.Name+copySuffix)
		return appendFolder(children, dup), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, dup, nil
}

// DuplicateNote appends a copy of a note to the same folder.
func DuplicateNote(forest []*domain.Folder, folderPath []string, noteID string, now time.Time) ([]*domain.Folder, *domain.Note, error) {
	folder, err := FindFolder(forest, folderPath)
	if err != nil {
		return nil, nil, err
	}
	i := indexNote(folder.Notes, noteID)
	if i < 0 {
		return nil, nil, &domain.NotFoundError{Kind: "note", Key: noteID}
	}
	src := folder.Notes[i]
	dup := NewNote(src.Title+copySuffix, src.Content, now)
	out, err := InsertNoteAt(forest, folderPath, dup)
	if err != nil {
		return nil, nil, err
	}
	return out, dup, nil
}

// MoveFolder reparents the folder at path under destParent (root when
// empty).
func MoveFolder(forest []*domain.Folder, path, destParent []string) ([]*domain.Folder, error) {
	if len(path) == 0 {
		return nil, domain.FolderNotFound(path)
	}
	if hasPrefix(destParent, path) {
		return nil, &domain.ValidationError{Field: "destination", Reason: "cannot move a folder into itself"}
	}
	parentPath, name := Split(path)
	if slices.Equal(parentPath, destParent) {
		if _, err := FindFolder(forest, path); err != nil {
			return nil, err
		}
		return forest, nil
	}
	dest, err := Children(forest, destParent)
	if err != nil {
		return nil, err
	}
	if childNamed(dest, name) != nil {
		return nil, &domain.DuplicateNameError{Name: name, Path: destParent}
	}
	out, moved, err := RemoveFolder(forest, path)
	if err != nil {
		return nil, err
	}
	return updateChildren(out, destParent, func(children []*domain.Folder) ([]*domain.Folder, error) {
		return appendFolder(children, moved), nil
	})
}

// MoveNote moves a note between folders.
func MoveNote(forest []*domain.Folder, fromPath []string, noteID string, destPath []string) ([]*domain.Folder, error) {
	if _, err := FindFolder(forest, destPath); err != nil {
		return nil, err
	}
	if slices.Equal(fromPath, destPath) {
		if _, err := FindFolder(forest, fromPath); err != nil {
			return nil, err
		}
		return forest, nil
	}
	out, note, err := RemoveNote(forest, fromPath, noteID)
	if err != nil {
		return nil, err
	}
	return InsertNoteAt(out, destPath, note)
}

// UniqueName returns base, or base followed by the first free number, so
// that it does not collide with any folder in level.
func UniqueName(level []*domain.Folder, base string) string {
	if childNamed(level, base) == nil {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s %d", base, n)
		if childNamed(level, candidate) == nil {
			return candidate
		}
	}
}

func hasPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}
