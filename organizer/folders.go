// organizer/folders.go
package organizer

import (
	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/store"
	"github.com/ViniZap4/stride-server/trash"
	"github.com/ViniZap4/stride-server/tree"
)

// Tree returns the folder forest. Callers must not modify it.
func (o *Organizer) Tree() []*domain.Folder {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ws.Folders
}

// Folders lists every folder with its path, pinned first.
func (o *Organizer) Folders() []tree.FolderEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return tree.AllFolders(o.ws.Folders)
}

// Children lists the folders directly under parent, pinned first. An empty
// parent lists the roots.
func (o *Organizer) Children(parent []string) ([]*domain.Folder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	children, err := tree.Children(o.ws.Folders, parent)
	if err != nil {
		return nil, o.logLookup("folder.children", err)
	}
	return tree.SortFolders(children), nil
}

func (o *Organizer) CreateFolder(parent []string, name string) (*domain.Folder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, created, err := tree.InsertFolder(o.ws.Folders, parent, name)
	if err != nil {
		return nil, o.logLookup("folder.create", err)
	}
	o.ws.Folders = out
	o.treeChanged("folder.create")
	return created, nil
}

func (o *Organizer) RenameFolder(path []string, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := tree.RenameFolder(o.ws.Folders, path, name)
	if err != nil {
		return o.logLookup("folder.rename", err)
	}
	o.ws.Folders = out
	o.treeChanged("folder.rename")
	return nil
}

func (o *Organizer) MoveFolder(path, destParent []string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := tree.MoveFolder(o.ws.Folders, path, destParent)
	if err != nil {
		return o.logLookup("folder.move", err)
	}
	o.ws.Folders = out
	o.treeChanged("folder.move")
	return nil
}

func (o *Organizer) DuplicateFolder(path []string) (*domain.Folder, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, dup, err := tree.DuplicateFolder(o.ws.Folders, path)
	if err != nil {
		return nil, o.logLookup("folder.duplicate", err)
	}
	o.ws.Folders = out
	o.treeChanged("folder.duplicate")
	return dup, nil
}

// TogglePin flips the pinned flag and returns the new value.
func (o *Organizer) TogglePin(path []string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, pinned, err := tree.TogglePin(o.ws.Folders, path)
	if err != nil {
		return false, o.logLookup("folder.pin", err)
	}
	o.ws.Folders = out
	o.treeChanged("folder.pin")
	return pinned, nil
}

// DeleteFolder moves the folder and everything under it to the trash.
func (o *Organizer) DeleteFolder(path []string) (domain.TrashItem, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ws, item, err := trash.MoveFolderToTrash(o.ws, path, o.now())
	if err != nil {
		return domain.TrashItem{}, o.logLookup("folder.delete", err)
	}
	o.ws = ws
	o.treeChanged("folder.delete", store.KeyTrash)
	return item, nil
}
