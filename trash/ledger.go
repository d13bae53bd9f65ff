// trash/ledger.go
package trash

import (
	"fmt"
	"slices"
	"time"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/tree"
)

const (
	DefaultRetention = 15 * 24 * time.Hour
	restoredSuffix   = " (restored)"
	// RootNotesFolder receives notes restored with an empty original path
	// when the tree has no folder to hold them.
	RootNotesFolder = "Notes"
)

// MoveFolderToTrash detaches the folder at path and records it in the
// ledger in the same transition.
func MoveFolderToTrash(ws domain.Workspace, path []string, now time.Time) (domain.Workspace, domain.TrashItem, error) {
	folders, removed, err := tree.RemoveFolder(ws.Folders, path)
	if err != nil {
		return ws, domain.TrashItem{}, err
	}
	parent, _ := tree.Split(path)
	item := domain.TrashItem{
		ID:           domain.NewID(),
		Title:        removed.Name,
		Content:      fmt.Sprintf("Folder with %d note(s) and %d subfolder(s)", len(removed.Notes), len(removed.Subfolders)),
		Type:         domain.ItemFolder,
		OriginalPath: slices.Clone(parent),
		DeletedAt:    now.UTC(),
		FolderID:     removed.ID,
		Subfolders:   removed.Subfolders,
		Notes:        removed.Notes,
	}
	return domain.Workspace{Folders: folders, Trash: appendItem(ws.Trash, item)}, item, nil
}

// MoveNoteToTrash detaches a note and records it in the ledger. The ledger
// entry keeps the note id.
func MoveNoteToTrash(ws domain.Workspace, folderPath []string, noteID string, now time.Time) (domain.Workspace, domain.TrashItem, error) {
	folders, removed, err := tree.RemoveNote(ws.Folders, folderPath, noteID)
	if err != nil {
		return ws, domain.TrashItem{}, err
	}
	item := domain.TrashItem{
		ID:           removed.ID,
		Title:        removed.Title,
		Content:      removed.Content,
		Type:         domain.ItemNote,
		OriginalPath: slices.Clone(folderPath),
		DeletedAt:    now.UTC(),
	}
	return domain.Workspace{Folders: folders, Trash: appendItem(ws.Trash, item)}, item, nil
}

// Find returns the ledger entry with the given id.
func Find(items []domain.TrashItem, id string) (domain.TrashItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.TrashItem{}, false
}

// Restore reinserts a ledger entry at its original location and drops it
// from the ledger. Missing folders along the original path are recreated.
// Restoring into a location that already holds the item only removes the
// ledger entry.
func Restore(ws domain.Workspace, itemID string) (domain.Workspace, error) {
	item, ok := Find(ws.Trash, itemID)
	if !ok {
		return ws, &domain.NotFoundError{Kind: "trash item", Key: itemID}
	}
	folders, err := reinsert(ws.Folders, item)
	if err != nil {
		return ws, err
	}
	return domain.Workspace{Folders: folders, Trash: without(ws.Trash, itemID)}, nil
}

// RestoreMany restores each id in turn. Unknown ids are reported after the
// others have been restored.
func RestoreMany(ws domain.Workspace, ids []string) (domain.Workspace, error) {
	var missing []string
	for _, id := range ids {
		next, err := Restore(ws, id)
		if err != nil {
			missing = append(missing, id)
			continue
		}
		ws = next
	}
	if len(missing) > 0 {
		return ws, &domain.NotFoundError{Kind: "trash item", Key: fmt.Sprint(missing)}
	}
	return ws, nil
}

// DeletePermanently drops a ledger entry without restoring it.
func DeletePermanently(items []domain.TrashItem, id string) ([]domain.TrashItem, error) {
	if _, ok := Find(items, id); !ok {
		return items, &domain.NotFoundError{Kind: "trash item", Key: id}
	}
	return without(items, id), nil
}

func DeleteManyPermanently(items []domain.TrashItem, ids []string) []domain.TrashItem {
	out := make([]domain.TrashItem, 0, len(items))
	for _, it := range items {
		if !slices.Contains(ids, it.ID) {
			out = append(out, it)
		}
	}
	return out
}

// PurgeExpired keeps the entries deleted within the retention window.
func PurgeExpired(items []domain.TrashItem, now time.Time, retention time.Duration) (kept []domain.TrashItem, purged int) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cutoff := now.Add(-retention)
	kept = make([]domain.TrashItem, 0, len(items))
	for _, it := range items {
		if it.DeletedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, it)
	}
	return kept, purged
}

func reinsert(folders []*domain.Folder, item domain.TrashItem) ([]*domain.Folder, error) {
	if item.Type == domain.ItemNote && len(item.OriginalPath) == 0 {
		return restoreRootNote(folders, item)
	}
	folders, err := ensurePath(folders, item.OriginalPath)
	if err != nil {
		return nil, err
	}
	switch item.Type {
	case domain.ItemNote:
		return tree.UpdateFolder(folders, item.OriginalPath, func(f *domain.Folder) (*domain.Folder, error) {
			if slices.ContainsFunc(f.Notes, func(n *domain.Note) bool { return n.ID == item.ID }) {
				return f, nil
			}
			c := *f
			c.Notes = append(slices.Clone(f.Notes), noteFromItem(item))
			return &c, nil
		})
	case domain.ItemFolder:
		return restoreFolder(folders, item)
	default:
		return nil, &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown trash item type %q", item.Type)}
	}
}

func restoreFolder(folders []*domain.Folder, item domain.TrashItem) ([]*domain.Folder, error) {
	if item.FolderID == "" {
		return nil, &domain.ValidationError{Field: "folderId", Reason: "missing on folder trash item"}
	}
	siblings, err := tree.Children(folders, item.OriginalPath)
	if err != nil {
		return nil, err
	}
	for _, f := range siblings {
		if f.ID == item.FolderID {
			return folders, nil
		}
	}
	restored := &domain.Folder{
		ID:         item.FolderID,
		Name:       item.Title,
		Subfolders: nonNilFolders(item.Subfolders),
		Notes:      nonNilNotes(item.Notes),
	}
	if restored.Name == "" || tree.UniqueName(siblings, restored.Name) != restored.Name {
		restored.Name = tree.UniqueName(siblings, item.Title+restoredSuffix)
	}
	if len(item.OriginalPath) == 0 {
		return append(slices.Clone(folders), restored), nil
	}
	return tree.UpdateFolder(folders, item.OriginalPath, func(f *domain.Folder) (*domain.Folder, error) {
		c := *f
		c.Subfolders = append(slices.Clone(f.Subfolders), restored)
		return &c, nil
	})
}

func restoreRootNote(folders []*domain.Folder, item domain.TrashItem) ([]*domain.Folder, error) {
	if _, err := tree.FindNoteByID(folders, item.ID); err == nil {
		return folders, nil
	}
	if len(folders) == 0 {
		holder := tree.NewFolder(RootNotesFolder)
		holder.Notes = []*domain.Note{noteFromItem(item)}
		return []*domain.Folder{holder}, nil
	}
	return tree.InsertNoteAt(folders, []string{folders[0].Name}, noteFromItem(item))
}

// ensurePath creates every folder of path that does not exist yet.
func ensurePath(folders []*domain.Folder, path []string) ([]*domain.Folder, error) {
	for i := range path {
		prefix := path[:i+1]
		if _, err := tree.FindFolder(folders, prefix); err == nil {
			continue
		}
		out, _, err := tree.InsertFolder(folders, path[:i], path[i])
		if err != nil {
			return nil, err
		}
		folders = out
	}
	return folders, nil
}

func noteFromItem(item domain.TrashItem) *domain.Note {
	return &domain.Note{ID: item.ID, Title: item.Title, Content: item.Content}
}

func nonNilFolders(in []*domain.Folder) []*domain.Folder {
	if in == nil {
		return []*domain.Folder{}
	}
	return in
}

func nonNilNotes(in []*domain.Note) []*domain.Note {
	if in == nil {
		return []*domain.Note{}
	}
	return in
}

func appendItem(items []domain.TrashItem, item domain.TrashItem) []domain.TrashItem {
	out := make([]domain.TrashItem, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func without(items []domain.TrashItem, id string) []domain.TrashItem {
	out := make([]domain.TrashItem, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
