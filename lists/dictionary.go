// lists/dictionary.go
package lists

import (
	"sort"
	"strings"

	"github.com/ViniZap4/stride-server/domain"
)

// AddEntry appends a word. OriginalOrder records insertion order and breaks
// ties when sorting.
func AddEntry(list []domain.DictionaryEntry, word, definition string) ([]domain.DictionaryEntry, domain.DictionaryEntry, error) {
	word, definition = strings.TrimSpace(word), strings.TrimSpace(definition)
	if word == "" {
		return list, domain.DictionaryEntry{}, &domain.ValidationError{Field: "word", Reason: "required"}
	}
	if definition == "" {
		return list, domain.DictionaryEntry{}, &domain.ValidationError{Field: "definition", Reason: "required"}
	}
	e := domain.DictionaryEntry{
		ID:            domain.NewID(),
		Word:          word,
		Definition:    definition,
		OriginalOrder: len(list),
	}
	out := make([]domain.DictionaryEntry, 0, len(list)+1)
	out = append(out, list...)
	return append(out, e), e, nil
}

func TogglePinEntry(list []domain.DictionaryEntry, id string) ([]domain.DictionaryEntry, domain.DictionaryEntry, error) {
	return updateEntry(list, id, func(e *domain.DictionaryEntry) error {
		e.IsPinned = !e.IsPinned
		return nil
	})
}

func UpdateEntry(list []domain.DictionaryEntry, id, word, definition string) ([]domain.DictionaryEntry, domain.DictionaryEntry, error) {
	word, definition = strings.TrimSpace(word), strings.TrimSpace(definition)
	return updateEntry(list, id, func(e *domain.DictionaryEntry) error {
		if word == "" || definition == "" {
			return &domain.ValidationError{Field: "entry", Reason: "word and definition are required"}
		}
		e.Word, e.Definition = word, definition
		return nil
	})
}

func updateEntry(list []domain.DictionaryEntry, id string, fn func(*domain.DictionaryEntry) error) ([]domain.DictionaryEntry, domain.DictionaryEntry, error) {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		out := append([]domain.DictionaryEntry(nil), list...)
		if err := fn(&out[i]); err != nil {
			return list, domain.DictionaryEntry{}, err
		}
		return out, out[i], nil
	}
	return list, domain.DictionaryEntry{}, &domain.NotFoundError{Kind: "dictionary entry", Key: id}
}

func DeleteEntry(list []domain.DictionaryEntry, id string) ([]domain.DictionaryEntry, error) {
	for i, e := range list {
		if e.ID == id {
			return removeAt(list, i), nil
		}
	}
	return list, &domain.NotFoundError{Kind: "dictionary entry", Key: id}
}

func FindEntry(list []domain.DictionaryEntry, id string) (domain.DictionaryEntry, bool) {
	for _, e := range list {
		if e.ID == id {
			return e, true
		}
	}
	return domain.DictionaryEntry{}, false
}

// FilterEntries keeps entries whose word or definition contains term
// (case-insensitive) and orders them pinned first, then by word.
func FilterEntries(list []domain.DictionaryEntry, term string) []domain.DictionaryEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	out := filter(list, func(e domain.DictionaryEntry) bool {
		return term == "" ||
			strings.Contains(strings.ToLower(e.Word), term) ||
			strings.Contains(strings.ToLower(e.Definition), term)
	})
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		aw, bw := strings.ToLower(a.Word), strings.ToLower(b.Word)
		if aw != bw {
			return aw < bw
		}
		return a.OriginalOrder < b.OriginalOrder
	})
	return out
}

// Definitions maps entry ids to definitions for rendering dictionary
// references.
func Definitions(list []domain.DictionaryEntry) map[string]string {
	m := make(map[string]string, len(list))
	for _, e := range list {
		m[e.ID] = e.Definition
	}
	return m
}
