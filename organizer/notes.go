// organizer/notes.go
package organizer

import (
	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/lists"
	"github.com/ViniZap4/stride-server/markup"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/trash"
	"github.com/ViniZap4/stride-server/tree"
)

func (o *Organizer) CreateNote(folder []string, title, content string) (*domain.Note, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	note := tree.NewNote(title, content, o.now())
	out, err := tree.InsertNoteAt(o.ws.Folders, folder, note)
	if err != nil {
		return nil, o.logLookup("note.create", err)
	}
	o.ws.Folders = out
	o.treeChanged("note.create")
	return note, nil
}

// Note finds a note anywhere in the tree by id.
func (o *Organizer) Note(id string) (tree.NoteLocation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	return loc, o.logLookup("note.get", err)
}

func (o *Organizer) UpdateNote(id string, changes tree.NoteChanges) (*domain.Note, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.updateNote("note.update", id, changes)
}

func (o *Organizer) updateNote(op, id string, changes tree.NoteChanges) (*domain.Note, error) {
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return nil, o.logLookup(op, err)
	}
	out, note, err := tree.UpdateNote(o.ws.Folders, loc.Path, id, changes, o.now())
	if err != nil {
		return nil, err
	}
	o.ws.Folders = out
	o.treeChanged(op)
	return note, nil
}

// OpenNote stamps the note as opened and returns where it lives, which is
// what the UI needs to navigate to it.
func (o *Organizer) OpenNote(id string) (tree.NoteLocation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return tree.NoteLocation{}, o.logLookup("note.open", err)
	}
	out, note, err := tree.UpdateNoteLastOpened(o.ws.Folders, loc.Path, id, o.now())
	if err != nil {
		return tree.NoteLocation{}, err
	}
	o.ws.Folders = out
	o.treeChanged("note.open")
	return tree.NoteLocation{Note: note, Path: loc.Path}, nil
}

func (o *Organizer) MoveNote(id string, dest []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return o.logLookup("note.move", err)
	}
	out, err := tree.MoveNote(o.ws.Folders, loc.Path, id, dest)
	if err != nil {
		return o.logLookup("note.move", err)
	}
	o.ws.Folders = out
	o.treeChanged("note.move")
	return nil
}

func (o *Organizer) DuplicateNote(id string) (*domain.Note, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return nil, o.logLookup("note.duplicate", err)
	}
	out, dup, err := tree.DuplicateNote(o.ws.Folders, loc.Path, id, o.now())
	if err != nil {
		return nil, err
	}
	o.ws.Folders = out
	o.treeChanged("note.duplicate")
	return dup, nil
}

// FormatNote wraps the rune range [start,end) of the note content in the
// marker described by f.
func (o *Organizer) FormatNote(id string, start, end int, f markup.Format) (*domain.Note, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return nil, o.logLookup("note.format", err)
	}
	content, err := markup.Wrap(loc.Note.Content, start, end, f)
	if err != nil {
		return nil, err
	}
	if content == loc.Note.Content {
		return loc.Note, nil
	}
	return o.updateNote("note.format", id, tree.NoteChanges{Content: &content})
}

// RenderNote renders the note content as HTML, resolving dictionary
// references against the current dictionary.
func (o *Organizer) RenderNote(id string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return "", o.logLookup("note.render", err)
	}
	defs := markup.Definitions(lists.Definitions(o.dictionary))
	return markup.RenderHTML(loc.Note.Content, defs), nil
}

func (o *Organizer) DeleteNote(id string) (domain.TrashItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	loc, err := tree.FindNoteByID(o.ws.Folders, id)
	if err != nil {
		return domain.TrashItem{}, o.logLookup("note.delete", err)
	}
	ws, item, err := trash.MoveNoteToTrash(o.ws, loc.Path, id, o.now())
	if err != nil {
		return domain.TrashItem{}, err
	}
	o.ws = ws
	o.treeChanged("note.delete", store.KeyTrash)
	return item, nil
}

func (o *Organizer) RecentNotes(limit int) []tree.RecentNote {
	o.mu.Lock()
	defer o.mu.Unlock()
	return tree.RecentNotes(o.ws.Folders, limit)
}
