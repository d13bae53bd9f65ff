// store/store.go
package store

import (
	"encoding/json"
	"fmt"
)

// Keys, one per top-level collection. The names match documents written by
// earlier Stride clients.
const (
	KeyFolders       = "stride-folder-structure"
	KeyBookmarks     = "stride-bookmarks"
	KeyTrash         = "stride-trash-items"
	KeyTodos         = "stride-todo-items"
	KeyDictionary    = "stride-dictionary-entries"
	KeyStreak        = "stride-streak-data"
	KeySearchHistory = "stride-search-history"
)

// TrackedKeys lists every key mirrored to a remote account.
var TrackedKeys = []string{
	KeyFolders,
	KeyBookmarks,
	KeyTrash,
	KeyTodos,
	KeyDictionary,
	KeyStreak,
	KeySearchHistory,
}

func IsTracked(key string) bool {
	for _, k := range TrackedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Store is a string key/value store. Get reports whether the key exists.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}

// GetJSON decodes the value at key into v. It returns false, leaving v
// untouched, when the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}
