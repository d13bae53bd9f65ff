// organizer/transfer.go
package organizer

import (
	"fmt"

	"github.com/ViniZap4/stride-server/filesystem"
)

// Export writes the folder tree as markdown files under dir.
func (o *Organizer) Export(dir string) error {
	o.mu.Lock()
	forest := o.ws.Folders
	o.mu.Unlock()
	if err := filesystem.ExportTree(dir, forest); err != nil {
		return fmt.Errorf("export to %s: %w", dir, err)
	}
	o.log.Info().Str("dir", dir).Msg("tree exported")
	return nil
}

// Import replaces the folder tree with the one exported under dir. The
// trash and the other collections are kept.
func (o *Organizer) Import(dir string) error {
	forest, err := filesystem.ImportTree(dir, o.log)
	if err != nil {
		return fmt.Errorf("import from %s: %w", dir, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ws.Folders = forest
	o.treeChanged("tree.import")
	o.log.Info().Str("dir", dir).Int("folders", len(forest)).Msg("tree imported")
	return nil
}
