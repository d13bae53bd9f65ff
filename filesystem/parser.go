// filesystem/parser.go
package filesystem

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/stride-server/domain"
)

// ReadNote parses a markdown file with YAML frontmatter. The body after the
// closing separator is the note content, byte for byte.
func ReadNote(path string) (*domain.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseNote(data)
}

func parseNote(data []byte) (*domain.Note, error) {
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return nil, fmt.Errorf("invalid frontmatter format")
	}
	front, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		if front, ok = bytes.CutSuffix(rest, []byte("\n---")); !ok {
			return nil, fmt.Errorf("invalid frontmatter format")
		}
	}

	note := &domain.Note{}
	if err := yaml.Unmarshal(front, note); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if note.ID == "" {
		return nil, fmt.Errorf("frontmatter has no id")
	}

	// WriteNote puts one blank line between the frontmatter and the body.
	note.Content = string(bytes.TrimPrefix(body, []byte("\n")))
	return note, nil
}

func WriteNote(path string, note *domain.Note) error {
	data, err := formatNote(note)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func formatNote(note *domain.Note) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(note); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	encoder.Close()

	buf.WriteString("---\n\n")
	buf.WriteString(note.Content)
	return buf.Bytes(), nil
}
