// markup/serialize.go
package markup

import "strings"

// Serialize writes runs back to the marker form accepted by ParseLine.
func Serialize(runs []Run) string {
	var b strings.Builder
	writeRuns(&b, runs)
	return b.String()
}

// SerializeLines is the inverse of Parse.
func SerializeLines(lines [][]Run) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = Serialize(l)
	}
	return strings.Join(parts, "\n")
}

func writeRuns(b *strings.Builder, runs []Run) {
	for _, r := range runs {
		// "***x***" reads back as bold around italic; italic directly
		// around bold is written in that order too.
		if r.Kind == Italic && len(r.Children) == 1 && r.Children[0].Kind == Bold {
			r = Strong(Emphasis(r.Children[0].Children...))
		}
		open, closer := markers(r)
		b.WriteString(open)
		if r.Kind == Plain {
			b.WriteString(r.Text)
		} else {
			writeRuns(b, r.Children)
		}
		b.WriteString(closer)
	}
}

// markers returns the opening and closing marker text for r.
func markers(r Run) (string, string) {
	switch r.Kind {
	case Bold:
		return "**", "**"
	case Italic:
		return "*", "*"
	case Highlight:
		return `<highlight color="` + r.Color + `">`, "</highlight>"
	case NoteLink:
		return `<link noteId="` + r.NoteID + `" noteTitle="` + r.NoteTitle + `">`, "</link>"
	case DictionaryRef:
		return `<dictionary id="` + r.EntryID + `">`, "</dictionary>"
	}
	return "", ""
}
