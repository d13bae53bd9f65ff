// lists/bookmarks.go
package lists

import (
	"regexp"
	"strings"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

const DefaultBookmarkColor = "#ff6b6b"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// AddBookmark prepends a bookmark, newest first. An empty color selects
// DefaultBookmarkColor.
func AddBookmark(list []domain.Bookmark, title, color string, now time.Time) ([]domain.Bookmark, domain.Bookmark, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return list, domain.Bookmark{}, &domain.ValidationError{Field: "title", Reason: "required"}
	}
	if color == "" {
		color = DefaultBookmarkColor
	}
	if !hexColor.MatchString(color) {
		return list, domain.Bookmark{}, &domain.ValidationError{Field: "color", Reason: "must be #RRGGBB"}
	}
	b := domain.Bookmark{ID: domain.NewID(), Title: title, Color: color, CreatedAt: now.UTC()}
	out := make([]domain.Bookmark, 0, len(list)+1)
	out = append(out, b)
	return append(out, list...), b, nil
}

func DeleteBookmark(list []domain.Bookmark, id string) ([]domain.Bookmark, error) {
	for i, b := range list {
		if b.ID == id {
			return removeAt(list, i), nil
		}
	}
	return list, &domain.NotFoundError{Kind: "bookmark", Key: id}
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
