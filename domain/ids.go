// domain/ids.go
package domain

import "github.com/google/uuid"

// NewID returns a fresh opaque identifier. Ids round-trip through the store,
// so they must stay valid across restarts.
func NewID() string {
	return uuid.NewString()
}
