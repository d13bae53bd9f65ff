// domain/errors.go
package domain

import (
	"fmt"
	"strings"
)

type DuplicateNameError struct {
	Name string
	Path []string
}

func (e *DuplicateNameError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("a folder named %q already exists at the root", e.Name)
	}
	return fmt.Sprintf("a folder named %q already exists in %s", e.Name, strings.Join(e.Path, "/"))
}

type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

func FolderNotFound(path []string) *NotFoundError {
	return &NotFoundError{Kind: "folder", Key: strings.Join(path, "/")}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed store or mirror write. It is logged and
// counted, never surfaced to the user.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
