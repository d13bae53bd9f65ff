// markup/render.go
package markup

import (
	"html"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Resolver looks up dictionary definitions for DictionaryRef runs.
type Resolver interface {
	Definition(entryID string) (string, bool)
}

// Definitions is a Resolver backed by a map of entry id to definition.
type Definitions map[string]string

func (d Definitions) Definition(id string) (string, bool) {
	def, ok := d[id]
	return def, ok
}

// RenderHTML renders content as one <p> per line. r may be nil, in which
// case dictionary references render without a definition.
func RenderHTML(content string, r Resolver) string {
	var b strings.Builder
	for i, line := range Parse(content) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("<p>")
		if len(line) == 0 {
			b.WriteString("&nbsp;")
		} else {
			renderRuns(&b, line, r)
		}
		b.WriteString("</p>")
	}
	return b.String()
}

func renderRuns(b *strings.Builder, runs []Run, res Resolver) {
	for _, r := range runs {
		switch r.Kind {
		case Plain:
			b.WriteString(html.EscapeString(r.Text))
			continue
		case Bold:
			b.WriteString("<strong>")
		case Italic:
			b.WriteString("<em>")
		case Highlight:
			if hexColor.MatchString(r.Color) {
				b.WriteString(`<mark style="background-color: ` + r.Color + `">`)
			} else {
				b.WriteString("<mark>")
			}
		case NoteLink:
			b.WriteString(`<a class="note-link" data-note-id="` + html.EscapeString(r.NoteID) +
				`" title="` + html.EscapeString("Go to: "+r.NoteTitle) + `">`)
		case DictionaryRef:
			b.WriteString(`<span class="dictionary-ref" data-entry-id="` + html.EscapeString(r.EntryID) + `"`)
			if res != nil {
				if def, ok := res.Definition(r.EntryID); ok {
					b.WriteString(` title="` + html.EscapeString(def) + `"`)
				}
			}
			b.WriteString(">")
		}
		renderRuns(b, r.Children, res)
		b.WriteString(closingTag(r.Kind))
	}
}

func closingTag(k Kind) string {
	switch k {
	case Bold:
		return "</strong>"
	case Italic:
		return "</em>"
	case Highlight:
		return "</mark>"
	case NoteLink:
		return "</a>"
	case DictionaryRef:
		return "</span>"
	}
	return ""
}
