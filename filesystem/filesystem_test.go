package filesystem

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/stride-server/domain"
)

func sampleForest() []*domain.Folder {
	ts := domain.Timestamp(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	plan := &domain.Note{ID: "n1", Title: "Plan: Q1", Content: "line one\n---\n**bold**\n", CreatedAt: ts, ModifiedAt: ts}
	empty := &domain.Note{ID: "n2", Title: "Empty"}
	return []*domain.Folder{
		{
			ID: "f1", Name: "Work/Home", IsPinned: true,
			Notes: []*domain.Note{plan, empty},
			Subfolders: []*domain.Folder{
				{ID: "f2", Name: "Zeta", Notes: []*domain.Note{}, Subfolders: []*domain.Folder{}},
				{ID: "f3", Name: "Alpha", Notes: []*domain.Note{}, Subfolders: []*domain.Folder{}},
			},
		},
		{ID: "f4", Name: ".hidden", Notes: []*domain.Note{}, Subfolders: []*domain.Folder{}},
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	forest := sampleForest()
	require.NoError(t, ExportTree(dir, forest))

	_, err := os.Stat(filepath.Join(dir, "Work_Home", "n1.md"))
	require.NoError(t, err)

	got, err := ImportTree(dir, zerolog.Nop())
	require.NoError(t, err)

	want, _ := json.Marshal(forest)
	have, _ := json.Marshal(got)
	assert.JSONEq(t, string(want), string(have))
}

func TestExportRefusesNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), nil, 0644))
	assert.Error(t, ExportTree(dir, sampleForest()))
}

func TestImportSkipsBrokenNotes(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "Inbox")
	require.NoError(t, os.MkdirAll(folder, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "bad.md"), []byte("no frontmatter"), 0644))
	require.NoError(t, WriteNote(filepath.Join(folder, "ok.md"), &domain.Note{ID: "ok", Title: "Fine", Content: "x"}))

	got, err := ImportTree(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Inbox", got[0].Name)
	assert.NotEmpty(t, got[0].ID)
	require.Len(t, got[0].Notes, 1)
	assert.Equal(t, "Fine", got[0].Notes[0].Title)
}

func TestParseNote(t *testing.T) {
	note, err := parseNote([]byte("---\nid: a\ntitle: T\n---\n\nbody --- with dashes"))
	require.NoError(t, err)
	assert.Equal(t, "a", note.ID)
	assert.Equal(t, "body --- with dashes", note.Content)

	_, err = parseNote([]byte("text\n---\nid: a\n---\n"))
	assert.Error(t, err)
	_, err = parseNote([]byte("---\ntitle: no id\n---\n"))
	assert.Error(t, err)
}

func TestOrdered(t *testing.T) {
	assert.Equal(t, []string{"c", "a", "b", "d"}, ordered([]string{"d", "b", "a", "c"}, []string{"c", "x", "a"}))
}
