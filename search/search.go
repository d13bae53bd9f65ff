// search/search.go
package search

import (
	"strings"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/tree"
)

type Result struct {
	Type  domain.ItemType `json:"type"`
	ID    string          `json:"id"`
	Title string          `json:"title"`
	// Path locates the folder that holds the match: the parent folder for a
	// folder match, the containing folder for a note match.
	Path []string `json:"path"`
}

// Search walks the whole tree once, in pre-order, and collects every folder
// whose name and every note whose title or content contains term, ignoring
// case. Results keep traversal order.
func Search(forest []*domain.Folder, term string) []Result {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	results := []Result{}
	tree.Walk(forest, func(f *domain.Folder, path []string) bool {
		parent, _ := tree.Split(path)
		if strings.Contains(strings.ToLower(f.Name), needle) {
			results = append(results, Result{Type: domain.ItemFolder, ID: f.ID, Title: f.Name, Path: parent})
		}
		for _, n := range f.Notes {
			if strings.Contains(strings.ToLower(n.Title), needle) || strings.Contains(strings.ToLower(n.Content), needle) {
				results = append(results, Result{Type: domain.ItemNote, ID: n.ID, Title: n.Title, Path: path})
			}
		}
		return true
	})
	return results
}
