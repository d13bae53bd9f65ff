// markup/wrap.go
package markup

import (
	"fmt"
	"strings"

	"github.com/ViniZap4/stride-server/domain"
)

// Format describes the marker applied by Wrap. Only the attributes of Kind
// are read.
type Format struct {
	Kind      Kind   `json:"kind"`
	Color     string `json:"color,omitempty"`
	NoteID    string `json:"noteId,omitempty"`
	NoteTitle string `json:"noteTitle,omitempty"`
	EntryID   string `json:"entryId,omitempty"`
}

// Wrap surrounds the runes [start,end) of content with the marker for f.
// Selections that are already wrapped by the identical marker are returned
// unchanged.
func Wrap(content string, start, end int, f Format) (string, error) {
	runes := []rune(content)
	if start < 0 || end > len(runes) || start >= end {
		return "", &domain.ValidationError{
			Field:  "selection",
			Reason: fmt.Sprintf("[%d,%d) is outside 0..%d or empty", start, end, len(runes)),
		}
	}
	selected := string(runes[start:end])
	if strings.ContainsRune(selected, '\n') {
		return "", &domain.ValidationError{Field: "selection", Reason: "spans a line break"}
	}
	if err := f.validate(); err != nil {
		return "", err
	}

	open, closer := markers(f.run())
	before, after := string(runes[:start]), string(runes[end:])
	if wrapped(before, after, open, closer, f.Kind) {
		return content, nil
	}
	return before + open + selected + closer + after, nil
}

func (f Format) run() Run {
	return Run{Kind: f.Kind, Color: f.Color, NoteID: f.NoteID, NoteTitle: f.NoteTitle, EntryID: f.EntryID}
}

func (f Format) validate() error {
	var attrs map[string]string
	switch f.Kind {
	case Bold, Italic:
		return nil
	case Highlight:
		if f.Color == "" {
			return &domain.ValidationError{Field: "color", Reason: "required"}
		}
		attrs = map[string]string{"color": f.Color}
	case NoteLink:
		if f.NoteID == "" {
			return &domain.ValidationError{Field: "noteId", Reason: "required"}
		}
		attrs = map[string]string{"noteId": f.NoteID, "noteTitle": f.NoteTitle}
	case DictionaryRef:
		if f.EntryID == "" {
			return &domain.ValidationError{Field: "entryId", Reason: "required"}
		}
		attrs = map[string]string{"entryId": f.EntryID}
	default:
		return &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("cannot wrap %s", f.Kind)}
	}
	for name, v := range attrs {
		if strings.ContainsAny(v, "\"\n") {
			return &domain.ValidationError{Field: name, Reason: "must not contain quotes or line breaks"}
		}
	}
	return nil
}

func wrapped(before, after, open, closer string, k Kind) bool {
	if !strings.HasSuffix(before, open) || !strings.HasPrefix(after, closer) {
		return false
	}
	// A lone '*' on each side of a bold span is not italic.
	if k == Italic && strings.HasSuffix(before, "**") && !strings.HasSuffix(before, "***") {
		return false
	}
	return true
}
