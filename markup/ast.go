// markup/ast.go
package markup

// Kind tags the variant held by a Run.
type Kind int

const (
	Plain Kind = iota
	Bold
	Italic
	Highlight
	NoteLink
	DictionaryRef
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Highlight:
		return "highlight"
	case NoteLink:
		return "link"
	case DictionaryRef:
		return "dictionary"
	}
	return "unknown"
}

// ParseKind maps the names used by the API ("bold", "link", ...) to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k := Plain; k <= DictionaryRef; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return Plain, false
}

// Run is one node of a formatted line. Plain runs carry Text; every other
// kind carries Children plus the attributes of its marker.
type Run struct {
	Kind      Kind   `json:"kind"`
	Text      string `json:"text,omitempty"`
	Color     string `json:"color,omitempty"`
	NoteID    string `json:"noteId,omitempty"`
	NoteTitle string `json:"noteTitle,omitempty"`
	EntryID   string `json:"entryId,omitempty"`
	Children  []Run  `json:"children,omitempty"`
}

func Text(s string) Run { return Run{Kind: Plain, Text: s} }

func Strong(children ...Run) Run { return Run{Kind: Bold, Children: children} }

func Emphasis(children ...Run) Run { return Run{Kind: Italic, Children: children} }

func Mark(color string, children ...Run) Run {
	return Run{Kind: Highlight, Color: color, Children: children}
}

func Link(noteID, noteTitle string, children ...Run) Run {
	return Run{Kind: NoteLink, NoteID: noteID, NoteTitle: noteTitle, Children: children}
}

func Term(entryID string, children ...Run) Run {
	return Run{Kind: DictionaryRef, EntryID: entryID, Children: children}
}

// PlainText flattens runs to the text a reader sees.
func PlainText(runs []Run) string {
	var n int
	for _, r := range runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	return string(appendPlain(buf, runs))
}

func appendPlain(buf []byte, runs []Run) []byte {
	for _, r := range runs {
		if r.Kind == Plain {
			buf = append(buf, r.Text...)
			continue
		}
		buf = appendPlain(buf, r.Children)
	}
	return buf
}
