package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// NewLocalStore serves basePath of the host filesystem. The directory is
// created when missing. afero.BasePathFs rejects any name resolving outside it.
func NewLocalStore(basePath string) (*AferoStore, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}

	if err := os.MkdirAll(absBase, 0o755); err != nil {
		return nil, fmt.Errorf("ensure base path: %w", err)
	}

	return &AferoStore{
		fs:         afero.NewBasePathFs(afero.NewOsFs(), absBase),
		root:       absBase,
		renameDirs: true,
	}, nil
}
