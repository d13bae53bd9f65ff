// filesystem/tree.go
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/tree"
)

const metaFile = ".folder.yaml"

// folderMeta is written next to the notes of every folder. Folders and Notes
// record sibling order; the export root carries only Folders.
type folderMeta struct {
	ID      string   `yaml:"id,omitempty"`
	Name    string   `yaml:"name,omitempty"`
	Pinned  bool     `yaml:"pinned,omitempty"`
	Folders []string `yaml:"folders,omitempty"`
	Notes   []string `yaml:"notes,omitempty"`
}

// ExportTree writes forest under dir, one directory per folder and one
// <note-id>.md per note. dir must be empty or absent.
func ExportTree(dir string, forest []*domain.Folder) error {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if len(entries) > 0 {
		return fmt.Errorf("export directory %s is not empty", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	dirs, err := exportLevel(dir, forest)
	if err != nil {
		return err
	}
	return writeMeta(dir, folderMeta{Folders: dirs})
}

func exportLevel(dir string, level []*domain.Folder) ([]string, error) {
	used := map[string]bool{}
	names := make([]string, 0, len(level))
	for _, f := range level {
		name := dirName(f, used)
		used[name] = true
		names = append(names, name)

		path := filepath.Join(dir, name)
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, err
		}
		meta := folderMeta{ID: f.ID, Name: f.Name, Pinned: f.IsPinned}
		for _, n := range f.Notes {
			if err := WriteNote(filepath.Join(path, n.ID+".md"), n); err != nil {
				return nil, fmt.Errorf("write note %s: %w", n.ID, err)
			}
			meta.Notes = append(meta.Notes, n.ID)
		}
		sub, err := exportLevel(path, f.Subfolders)
		if err != nil {
			return nil, err
		}
		meta.Folders = sub
		if err := writeMeta(path, meta); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// dirName makes a folder name safe for the file system, falling back to the
// id when sanitizing collides with a sibling.
func dirName(f *domain.Folder, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(f.Name))
	name = strings.TrimLeft(name, ".")
	if name == "" || used[name] {
		name = strings.TrimSpace(name + " " + f.ID)
	}
	return name
}

func writeMeta(dir string, meta folderMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, metaFile), data, 0644)
}

func readMeta(dir string) (folderMeta, error) {
	var meta folderMeta
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if errors.Is(err, fs.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, err
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse %s: %w", filepath.Join(dir, metaFile), err)
	}
	return meta, nil
}

// ImportTree reads a tree written by ExportTree. Ids are preserved; folders
// without metadata get a fresh id and their directory name. Unreadable notes
// are skipped.
func ImportTree(dir string, log zerolog.Logger) ([]*domain.Folder, error) {
	meta, err := readMeta(dir)
	if err != nil {
		return nil, err
	}
	return importLevel(dir, meta.Folders, log)
}

func importLevel(dir string, order []string, log zerolog.Logger) ([]*domain.Folder, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}

	level := []*domain.Folder{}
	for _, name := range ordered(dirs, order) {
		path := filepath.Join(dir, name)
		meta, err := readMeta(path)
		if err != nil {
			return nil, err
		}
		f := tree.NewFolder(name)
		if meta.ID != "" {
			f.ID = meta.ID
		}
		if meta.Name != "" {
			f.Name = meta.Name
		}
		f.IsPinned = meta.Pinned
		if f.Name != tree.UniqueName(level, f.Name) {
			log.Warn().Str("folder", path).Msg("duplicate folder name, renamed")
			f.Name = tree.UniqueName(level, f.Name)
		}
		if f.Notes, err = importNotes(path, meta.Notes, log); err != nil {
			return nil, err
		}
		if f.Subfolders, err = importLevel(path, meta.Folders, log); err != nil {
			return nil, err
		}
		level = append(level, f)
	}
	return level, nil
}

func importNotes(dir string, order []string, log zerolog.Logger) ([]*domain.Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	byID := map[string]*domain.Note{}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		note, err := ReadNote(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping note")
			continue
		}
		if _, dup := byID[note.ID]; dup {
			log.Warn().Str("file", path).Str("id", note.ID).Msg("skipping duplicate note id")
			continue
		}
		byID[note.ID] = note
		ids = append(ids, note.ID)
	}
	notes := []*domain.Note{}
	for _, id := range ordered(ids, order) {
		notes = append(notes, byID[id])
	}
	return notes, nil
}

// ordered returns names in the recorded order, followed by any names the
// record does not mention, sorted.
func ordered(names, order []string) []string {
	present := map[string]bool{}
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range order {
		if present[n] && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	var rest []string
	for _, n := range names {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
