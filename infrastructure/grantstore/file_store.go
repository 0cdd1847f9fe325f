// Package grant_store persists the host's per-user capability consent
// decisions across the many short-lived kbhost process invocations a single
// interactive session runs (one per command), as opposed to a single
// long-lived embedding process granting capabilities once at startup.
package grant_store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
	"gopkg.in/yaml.v3"
)

// fileStoreConfig holds configuration for the FileStore.
type fileStoreConfig struct {
	path     string      // Path to the grants file
	dirPerm  os.FileMode // Permission for created directories
	filePerm os.FileMode // Permission for the grants file
}

func defaultFileStoreConfig() fileStoreConfig {
	return fileStoreConfig{
		path:     filepath.Join(os.Getenv("HOME"), ".kb-registry", "grants.yaml"),
		dirPerm:  0o755, // User config directory
		filePerm: 0o600, // User-only read/write (secure default)
	}
}

// FileStoreOption configures a FileStore instance.
type FileStoreOption func(*fileStoreConfig)

// WithPath sets the path to the grants file.
func WithPath(path string) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.path = path
	}
}

// WithFilePermissions sets the file permissions for the grants file.
// Default is 0o600 (user-only). Use with caution.
func WithFilePermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.filePerm = perm
	}
}

// WithDirPermissions sets the directory permissions for the grants directory.
// Default is 0o755.
func WithDirPermissions(perm os.FileMode) FileStoreOption {
	return func(c *fileStoreConfig) {
		c.dirPerm = perm
	}
}

// FileStore provides file-based persistence for capability grants.
type FileStore struct {
	config fileStoreConfig
}

// NewFileStore creates a new FileStore with the given options.
func NewFileStore(opts ...FileStoreOption) ports.GrantStore {
	cfg := defaultFileStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &FileStore{config: cfg}
}

// Load retrieves all granted capabilities.
func (s *FileStore) Load() (*entities.PermissionSpec, error) {
	data, err := os.ReadFile(s.config.path)
	if os.IsNotExist(err) {
		// Return empty set if file doesn't exist
		return &entities.PermissionSpec{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read grant store: %w", err)
	}

	var grants entities.PermissionSpec
	if err := yaml.Unmarshal(data, &grants); err != nil {
		return nil, fmt.Errorf("failed to parse grant store: %w", err)
	}
	return &grants, nil
}

// Save persists the granted capabilities.
//
// Every kbhost invocation that grants or records consent for a capability
// loads, mutates, and saves this file from a brand new process, so two
// commands run back-to-back (or, worse, concurrently from a shell script)
// can race on the same path. Save writes to a sibling temp file and renames
// it into place so a reader never observes a truncated or half-written
// grants file, and a crash mid-write leaves the previous file intact.
func (s *FileStore) Save(grants *entities.PermissionSpec) error {
	grants.Tags = dedupeTags(grants.Tags)

	data, err := yaml.Marshal(grants)
	if err != nil {
		return fmt.Errorf("failed to marshal grants: %w", err)
	}

	dir := filepath.Dir(s.config.path)
	if err := os.MkdirAll(dir, s.config.dirPerm); err != nil {
		return fmt.Errorf("failed to create grant store directory: %w", err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(s.config.path), uuid.NewString()))
	if err := os.WriteFile(tmpPath, data, s.config.filePerm); err != nil {
		return fmt.Errorf("failed to write grant store temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.config.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit grant store: %w", err)
	}
	return nil
}

// dedupeTags removes duplicate consent tags and returns them sorted, so two
// processes appending the same tag in different orders converge on an
// identical file instead of fighting over it. Consent tags (e.g.
// "consented:<pluginID>") are only ever appended, never removed, so without
// this a plugin re-consented across several sessions would accumulate the
// same tag once per run.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ConfigPath returns the path to the backing store.
func (s *FileStore) ConfigPath() string {
	return s.config.path
}
