package favorites

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"githubglimpse/logger"

	"go.uber.org/zap"
)

// document is the on-disk shape of the favorites file:
//
//	favorites = ["facebook/react", "golang/go"]
type document struct {
	Favorites []string `toml:"favorites"`
}

// FileStore persists the favorite set as a TOML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file does
// not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the favorites file location under the user config
// directory, e.g. ~/.config/githubglimpse/favorites.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "githubglimpse", StorageKey+".toml")
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the favorite set. A missing file is an empty set.
func (f *FileStore) Load() (Set, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read favorites file: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse favorites file %s: %w", f.path, err)
	}

	logger.Debug("Loaded favorites", zap.String("path", f.path), zap.Int("count", len(doc.Favorites)))
	return NewSet(doc.Favorites...), nil
}

// Save writes the full set, replacing the previous file atomically.
func (f *FileStore) Save(set Set) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create favorites directory: %w", err)
	}

	data, err := toml.Marshal(document{Favorites: set.Names()})
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".favorites-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp favorites file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write favorites file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write favorites file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace favorites file: %w", err)
	}

	logger.Debug("Saved favorites", zap.String("path", f.path), zap.Int("count", set.Len()))
	return nil
}
