// markup/parser.go
package markup

import "strings"

type tagSpec struct {
	kind  Kind
	name  string
	attrs []string
}

// Tag markers in priority order. Bold and italic follow them.
var tagSpecs = []tagSpec{
	{kind: DictionaryRef, name: "dictionary", attrs: []string{"id"}},
	{kind: NoteLink, name: "link", attrs: []string{"noteId", "noteTitle"}},
	{kind: Highlight, name: "highlight", attrs: []string{"color"}},
}

func specFor(k Kind) (tagSpec, bool) {
	for _, t := range tagSpecs {
		if t.kind == k {
			return t, true
		}
	}
	return tagSpec{}, false
}

type match struct {
	run        Run
	start, end int
	inner      string
}

// Parse splits content into lines and parses each one. Markers never span
// a line break.
func Parse(content string) [][]Run {
	lines := strings.Split(content, "\n")
	out := make([][]Run, len(lines))
	for i, l := range lines {
		out[i] = ParseLine(l)
	}
	return out
}

// ParseLine scans left to right. At each step the earliest well-formed
// marker wins; markers starting at the same offset are tried in the order
// dictionary, link, highlight, bold, italic. Anything that does not form a
// complete marker stays literal text.
func ParseLine(line string) []Run {
	var out []Run
	pos := 0
	for pos < len(line) {
		m, ok := nextMatch(line, pos)
		if !ok {
			break
		}
		if m.start > pos {
			out = appendText(out, line[pos:m.start])
		}
		r := m.run
		r.Children = ParseLine(m.inner)
		out = append(out, r)
		pos = m.end
	}
	if pos < len(line) {
		out = appendText(out, line[pos:])
	}
	return out
}

func appendText(runs []Run, s string) []Run {
	if n := len(runs); n > 0 && runs[n-1].Kind == Plain {
		runs[n-1].Text += s
		return runs
	}
	return append(runs, Text(s))
}

func nextMatch(line string, pos int) (match, bool) {
	for i := pos; i < len(line); i++ {
		switch line[i] {
		case '<':
			for _, t := range tagSpecs {
				if m, ok := matchTag(line, i, t); ok {
					return m, true
				}
			}
		case '*':
			if m, ok := matchBold(line, i); ok {
				return m, true
			}
			if m, ok := matchItalic(line, i); ok {
				return m, true
			}
		}
	}
	return match{}, false
}

func matchTag(line string, at int, t tagSpec) (match, bool) {
	values, bodyStart, ok := openTag(line, at, t)
	if !ok {
		return match{}, false
	}
	closer := "</" + t.name + ">"
	bodyEnd, ok := closeIndex(line, bodyStart, t, closer)
	if !ok {
		return match{}, false
	}
	r := Run{Kind: t.kind}
	switch t.kind {
	case DictionaryRef:
		r.EntryID = values[0]
	case NoteLink:
		r.NoteID, r.NoteTitle = values[0], values[1]
	case Highlight:
		r.Color = values[0]
	}
	return match{
		run:   r,
		start: at,
		end:   bodyEnd + len(closer),
		inner: line[bodyStart:bodyEnd],
	}, true
}

// openTag reads `<name a="v" b="w">` at offset at and returns the attribute
// values and the offset just past '>'.
func openTag(line string, at int, t tagSpec) ([]string, int, bool) {
	i := at
	if !strings.HasPrefix(line[i:], "<"+t.name) {
		return nil, 0, false
	}
	i += 1 + len(t.name)
	values := make([]string, 0, len(t.attrs))
	for _, a := range t.attrs {
		prefix := " " + a + `="`
		if !strings.HasPrefix(line[i:], prefix) {
			return nil, 0, false
		}
		i += len(prefix)
		q := strings.IndexByte(line[i:], '"')
		if q < 0 {
			return nil, 0, false
		}
		values = append(values, line[i:i+q])
		i += q + 1
	}
	if i >= len(line) || line[i] != '>' {
		return nil, 0, false
	}
	return values, i + 1, true
}

// closeIndex finds the closer matching an already consumed opener, counting
// nested openers of the same tag.
func closeIndex(line string, from int, t tagSpec, closer string) (int, bool) {
	depth := 0
	for j := from; j < len(line); j++ {
		if line[j] != '<' {
			continue
		}
		if strings.HasPrefix(line[j:], closer) {
			if depth == 0 {
				return j, true
			}
			depth--
			j += len(closer) - 1
			continue
		}
		if _, end, ok := openTag(line, j, t); ok {
			depth++
			j = end - 1
		}
	}
	return 0, false
}

func matchBold(line string, at int) (match, bool) {
	if !strings.HasPrefix(line[at:], "**") {
		return match{}, false
	}
	k := strings.Index(line[at+2:], "**")
	if k < 0 {
		return match{}, false
	}
	// In a closing run of three stars the first one closes an italic span
	// inside the bold one, as in "***b***".
	if end := at + 2 + k + 2; end < len(line) && line[end] == '*' && strings.Count(line[at+2:at+2+k], "*")%2 == 1 {
		k++
	}
	return match{
		run:   Run{Kind: Bold},
		start: at,
		end:   at + 2 + k + 2,
		inner: line[at+2 : at+2+k],
	}, true
}

// matchItalic closes at the next single star, stepping over any complete
// "**...**" span so that "*a **b***" keeps its bold part.
func matchItalic(line string, at int) (match, bool) {
	for j := at + 1; j < len(line); j++ {
		if line[j] != '*' {
			continue
		}
		if strings.HasPrefix(line[j:], "**") {
			if c := strings.Index(line[j+2:], "**"); c >= 0 {
				j += 2 + c + 1
				continue
			}
		}
		return match{
			run:   Run{Kind: Italic},
			start: at,
			end:   j + 1,
			inner: line[at+1 : j],
		}, true
	}
	return match{}, false
}
