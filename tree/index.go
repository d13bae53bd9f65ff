// tree/index.go
package tree

import "github.com/ViniZap4/stride-server/domain"

// Walk visits every folder in pre-order with its full path. Returning false
// from fn stops the walk.
func Walk(forest []*domain.Folder, fn func(f *domain.Folder, path []string) bool) {
	walk(forest, nil, fn)
}

func walk(level []*domain.Folder, parent []string, fn func(*domain.Folder, []string) bool) bool {
	for _, f := range level {
		path := Join(parent, f.Name)
		if !fn(f, path) {
			return false
		}
		if !walk(f.Subfolders, path, fn) {
			return false
		}
	}
	return true
}

// Index is a flat id-to-path view of a forest, built in one walk. It is a
// snapshot: rebuild it after mutating the forest.
type Index struct {
	folders map[string][]string
	notes   map[string][]string
}

func NewIndex(forest []*domain.Folder) *Index {
	idx := &Index{
		folders: make(map[string][]string),
		notes:   make(map[string][]string),
	}
	Walk(forest, func(f *domain.Folder, path []string) bool {
		idx.folders[f.ID] = path
		for _, n := range f.Notes {
			if _, seen := idx.notes[n.ID]; !seen {
				idx.notes[n.ID] = path
			}
		}
		return true
	})
	return idx
}

// FolderPath returns the full path of the folder with the given id.
func (idx *Index) FolderPath(id string) ([]string, bool) {
	p, ok := idx.folders[id]
	return p, ok
}

// NotePath returns the path of the folder holding the note.
func (idx *Index) NotePath(id string) ([]string, bool) {
	p, ok := idx.notes[id]
	return p, ok
}

func (idx *Index) Len() (folders, notes int) {
	return len(idx.folders), len(idx.notes)
}
