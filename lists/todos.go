// lists/todos.go
package lists

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"github.com/ViniZap4/stride-server/domain"
)

// TodoColors is the fixed palette todos are painted with.
var TodoColors = []string{"gray", "green", "blue", "purple", "red", "yellow", "indigo"}

var clock = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Picker returns an index in [0,n).
type Picker func(n int) int

// RandomColor is the Picker used outside tests.
var RandomColor Picker = rand.IntN

// AddTodo prepends a todo scheduled for date at the "HH:MM" time of day.
func AddTodo(list []domain.TodoItem, title string, date time.Time, at string, now time.Time, pick Picker) ([]domain.TodoItem, domain.TodoItem, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return list, domain.TodoItem{}, &domain.ValidationError{Field: "title", Reason: "required"}
	}
	if !clock.MatchString(at) {
		return list, domain.TodoItem{}, &domain.ValidationError{Field: "time", Reason: "must be HH:MM"}
	}
	if pick == nil {
		pick = RandomColor
	}
	item := domain.TodoItem{
		ID:        domain.NewID(),
		Title:     title,
		Task:      title,
		Date:      date,
		Time:      at,
		Color:     TodoColors[pick(len(TodoColors))],
		CreatedAt: now.UTC(),
	}
	out := make([]domain.TodoItem, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...), item, nil
}

func ToggleTodo(list []domain.TodoItem, id string) ([]domain.TodoItem, domain.TodoItem, error) {
	for i, t := range list {
		if t.ID == id {
			out := append([]domain.TodoItem(nil), list...)
			out[i].Completed = !t.Completed
			return out, out[i], nil
		}
	}
	return list, domain.TodoItem{}, &domain.NotFoundError{Kind: "todo", Key: id}
}

func DeleteTodo(list []domain.TodoItem, id string) ([]domain.TodoItem, error) {
	for i, t := range list {
		if t.ID == id {
			return removeAt(list, i), nil
		}
	}
	return list, &domain.NotFoundError{Kind: "todo", Key: id}
}

func Pending(list []domain.TodoItem) []domain.TodoItem {
	return filter(list, func(t domain.TodoItem) bool { return !t.Completed })
}

func Completed(list []domain.TodoItem) []domain.TodoItem {
	return filter(list, func(t domain.TodoItem) bool { return t.Completed })
}

func filter[T any](list []T, keep func(T) bool) []T {
	out := []T{}
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
