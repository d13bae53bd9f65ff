// tree/tree.go
package tree

import (
	"strings"

	"github.com/ViniZap4/stride-server/domain"
)

// Forest functions never modify their input. Every folder on the path from
// the root to a mutated node is replaced by a fresh copy and untouched
// siblings keep their pointers, so callers can detect change by comparing
// references.

// FindFolder walks the forest matching one name per level.
func FindFolder(forest []*domain.Folder, path []string) (*domain.Folder, error) {
	if len(path) == 0 {
		return nil, domain.FolderNotFound(path)
	}
	level := forest
	var found *domain.Folder
	for _, name := range path {
		found = childNamed(level, name)
		if found == nil {
			return nil, domain.FolderNotFound(path)
		}
		level = found.Subfolders
	}
	return found, nil
}

// Children returns the folders directly under parentPath; an empty path
// addresses the root level.
func Children(forest []*domain.Folder, parentPath []string) ([]*domain.Folder, error) {
	if len(parentPath) == 0 {
		return forest, nil
	}
	parent, err := FindFolder(forest, parentPath)
	if err != nil {
		return nil, err
	}
	return parent.Subfolders, nil
}

// UpdateFolder replaces the folder at path with fn(folder). fn must treat
// its argument as read-only and return the replacement.
func UpdateFolder(forest []*domain.Folder, path []string, fn func(*domain.Folder) (*domain.Folder, error)) ([]*domain.Folder, error) {
	if len(path) == 0 {
		return nil, domain.FolderNotFound(path)
	}
	return updateLevel(forest, path, path, fn)
}

func updateLevel(level []*domain.Folder, rest, full []string, fn func(*domain.Folder) (*domain.Folder, error)) ([]*domain.Folder, error) {
	for i, f := range level {
		if f.Name != rest[0] {
			continue
		}
		var next *domain.Folder
		if len(rest) == 1 {
			n, err := fn(f)
			if err != nil {
				return nil, err
			}
			next = n
		} else {
			subs, err := updateLevel(f.Subfolders, rest[1:], full, fn)
			if err != nil {
				return nil, err
			}
			c := *f
			c.Subfolders = subs
			next = &c
		}
		out := make([]*domain.Folder, len(level))
		copy(out, level)
		out[i] = next
		return out, nil
	}
	return nil, domain.FolderNotFound(full)
}

// updateChildren rewrites the sibling group under parentPath.
func updateChildren(forest []*domain.Folder, parentPath []string, fn func([]*domain.Folder) ([]*domain.Folder, error)) ([]*domain.Folder, error) {
	if len(parentPath) == 0 {
		return fn(forest)
	}
	return UpdateFolder(forest, parentPath, func(f *domain.Folder) (*domain.Folder, error) {
		subs, err := fn(f.Subfolders)
		if err != nil {
			return nil, err
		}
		c := *f
		c.Subfolders = subs
		return &c, nil
	})
}

// NewFolder builds an empty folder with a fresh id.
func NewFolder(name string) *domain.Folder {
	return &domain.Folder{
		ID:         domain.NewID(),
		Name:       name,
		Subfolders: []*domain.Folder{},
		Notes:      []*domain.Note{},
	}
}

// InsertFolder appends a new empty folder named name under parentPath.
func InsertFolder(forest []*domain.Folder, parentPath []string, name string) ([]*domain.Folder, *domain.Folder, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, nil, err
	}
	created := NewFolder(name)
	out, err := updateChildren(forest, parentPath, func(children []*domain.Folder) ([]*domain.Folder, error) {
		if childNamed(children, name) != nil {
			return nil, &domain.DuplicateNameError{Name: name, Path: parentPath}
		}
		return appendFolder(children, created), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, created, nil
}

// RenameFolder changes the name of the folder at path. Renaming a folder to
// its current name is a no-op.
func RenameFolder(forest []*domain.Folder, path []string, newName string) ([]*domain.Folder, error) {
	newName, err := cleanName(newName)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, domain.FolderNotFound(path)
	}
	parentPath, name := Split(path)
	if name == newName {
		if _, err := FindFolder(forest, path); err != nil {
			return nil, err
		}
		return forest, nil
	}
	return updateChildren(forest, parentPath, func(children []*domain.Folder) ([]*domain.Folder, error) {
		i := indexNamed(children, name)
		if i < 0 {
			return nil, domain.FolderNotFound(path)
		}
		if other := childNamed(children, newName); other != nil && other.ID != children[i].ID {
			return nil, &domain.DuplicateNameError{Name: newName, Path: parentPath}
		}
		c := *children[i]
		c.Name = newName
		out := make([]*domain.Folder, len(children))
		copy(out, children)
		out[i] = &c
		return out, nil
	})
}

// RemoveFolder detaches the folder at path from its parent.
func RemoveFolder(forest []*domain.Folder, path []string) ([]*domain.Folder, *domain.Folder, error) {
	if len(path) == 0 {
		return nil, nil, domain.FolderNotFound(path)
	}
	parentPath, name := Split(path)
	var removed *domain.Folder
	out, err := updateChildren(forest, parentPath, func(children []*domain.Folder) ([]*domain.Folder, error) {
		i := indexNamed(children, name)
		if i < 0 {
			return nil, domain.FolderNotFound(path)
		}
		removed = children[i]
		return removeFolderAt(children, i), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, removed, nil
}

// TogglePin flips the pinned flag of the folder at path and reports the new
// value.
func TogglePin(forest []*domain.Folder, path []string) ([]*domain.Folder, bool, error) {
	var pinned bool
	out, err := UpdateFolder(forest, path, func(f *domain.Folder) (*domain.Folder, error) {
		c := *f
		c.IsPinned = !f.IsPinned
		pinned = c.IsPinned
		return &c, nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, pinned, nil
}

// Split separates a path into its parent path and last segment.
func Split(path []string) ([]string, string) {
	return path[:len(path)-1 : len(path)-1], path[len(path)-1]
}

// Join appends name to a copy of path.
func Join(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return name, nil
}

func childNamed(level []*domain.Folder, name string) *domain.Folder {
	if i := indexNamed(level, name); i >= 0 {
		return level[i]
	}
	return nil
}

func indexNamed(level []*domain.Folder, name string) int {
	for i, f := range level {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func appendFolder(level []*domain.Folder, f *domain.Folder) []*domain.Folder {
	out := make([]*domain.Folder, len(level), len(level)+1)
	copy(out, level)
	return append(out, f)
}

func removeFolderAt(level []*domain.Folder, i int) []*domain.Folder {
	out := make([]*domain.Folder, 0, len(level)-1)
	out = append(out, level[:i]...)
	return append(out, level[i+1:]...)
}

func appendNote(notes []*domain.Note, n *domain.Note) []*domain.Note {
	out := make([]*domain.Note, len(notes), len(notes)+1)
	copy(out, notes)
	return append(out, n)
}

func removeNoteAt(notes []*domain.Note, i int) []*domain.Note {
	out := make([]*domain.Note, 0, len(notes)-1)
	out = append(out, notes[:i]...)
	return append(out, notes[i+1:]...)
}

func indexNote(notes []*domain.Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
