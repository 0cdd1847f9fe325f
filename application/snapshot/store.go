package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kb-labs/registry-host/domain/entities"
	"github.com/kb-labs/registry-host/domain/ports"
)

const (
	cacheDirName     = "cache"
	snapshotFileName = "registry.json"
	backupFileName   = "registry.prev.json"
	minTTLMs         = 1000
	defaultTTLMs     = 5 * 60 * 1000
)

// storeConfig holds configuration for Store.
type storeConfig struct {
	cache ports.SnapshotCache
	ttlMs int64
}

func defaultStoreConfig() storeConfig {
	return storeConfig{ttlMs: defaultTTLMs}
}

// Option configures a Store.
type Option func(*storeConfig)

// WithCache attaches a best-effort external cache mirror.
func WithCache(c ports.SnapshotCache) Option {
	return func(cfg *storeConfig) { cfg.cache = c }
}

// WithTTL sets the default TTL applied to snapshots created by CreateEmpty.
func WithTTL(ttlMs int64) Option {
	return func(cfg *storeConfig) { cfg.ttlMs = ttlMs }
}

// Store implements ports.SnapshotStore under <root>/.kb/cache/.
type Store struct {
	config storeConfig
	root   string
}

// NewStore creates a Store rooted at root (typically the cwd or a workspace root).
func NewStore(root string, opts ...Option) ports.SnapshotStore {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{root: root, config: cfg}
}

func (s *Store) cacheDir() string       { return filepath.Join(s.root, ".kb", cacheDirName) }
func (s *Store) currentPath() string    { return filepath.Join(s.cacheDir(), snapshotFileName) }
func (s *Store) backupPath() string     { return filepath.Join(s.cacheDir(), backupFileName) }
func (s *Store) tmpPath(id string) string {
	return filepath.Join(s.cacheDir(), fmt.Sprintf("registry.tmp.%s.json", id))
}

// CreateEmpty returns a valid, empty snapshot: rev=0, partial=true, stale=false.
func (s *Store) CreateEmpty() *entities.RegistrySnapshot {
	now := time.Now().UTC()
	expires := now.Add(time.Duration(s.config.ttlMs) * time.Millisecond)
	snap := &entities.RegistrySnapshot{
		Schema:            entities.RegistrySnapshotSchema,
		Rev:               0,
		GeneratedAt:       now,
		ExpiresAt:         &expires,
		TTLMs:             s.config.ttlMs,
		Partial:           true,
		Stale:             false,
		ChecksumAlgorithm: "sha256",
		Plugins:           []entities.PluginBrief{},
		Manifests:         []entities.SnapshotEntry{},
		Source:            entities.SnapshotSource{Cwd: s.root},
	}
	cs, err := computeChecksum(snap)
	if err == nil {
		snap.Checksum = cs
	}
	return snap
}

// Persist atomically writes snapshot as the new current snapshot.
func (s *Store) Persist(snap *entities.RegistrySnapshot) error {
	prevChecksum, err := s.currentChecksum()
	if err == nil && prevChecksum != "" {
		pc := prevChecksum
		snap.PreviousChecksum = &pc
	}

	cs, err := computeChecksum(snap)
	if err != nil {
		return fmt.Errorf("failed to compute checksum: %w", err)
	}
	snap.Checksum = cs
	snap.ChecksumAlgorithm = "sha256"

	if err := os.MkdirAll(s.cacheDir(), 0o755); err != nil {
		return fmt.Errorf("failed to ensure cache dir: %w", err)
	}

	// Best-effort backup of the current snapshot; failure is logged, not fatal.
	if data, err := os.ReadFile(s.currentPath()); err == nil {
		if err := os.WriteFile(s.backupPath(), data, 0o644); err != nil {
			slog.Warn("failed to back up registry snapshot", "path", s.backupPath(), "error", err)
		}
	}

	serialized, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp := s.tmpPath(uuid.NewString())
	if err := os.WriteFile(tmp, serialized, 0o644); err != nil {
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.currentPath()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp snapshot into place: %w", err)
	}

	if s.config.cache != nil {
		_ = s.config.cache.Put(s.cacheKey(), serialized)
	}
	return nil
}

func (s *Store) currentChecksum() (string, error) {
	data, err := os.ReadFile(s.currentPath())
	if err != nil {
		return "", err
	}
	var snap entities.RegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return "", err
	}
	return snap.Checksum, nil
}

func (s *Store) cacheKey() string {
	return "kb-registry:" + s.root
}

// Load reads the current snapshot, falling back to the backup on a checksum
// mismatch or parse error, then applies staleness.
func (s *Store) Load() (*entities.RegistrySnapshot, error) {
	snap, err := s.loadAndVerify(s.currentPath())
	if err != nil {
		backup, backupErr := s.loadAndVerify(s.backupPath())
		if backupErr != nil {
			return nil, nil //nolint:nilnil // both files unreadable/corrupted: caller treats this as "no snapshot"
		}
		return s.applyStaleness(backup), nil
	}
	return s.applyStaleness(snap), nil
}

// loadAndVerify reads path, normalizes, and recomputes/compares the checksum.
func (s *Store) loadAndVerify(path string) (*entities.RegistrySnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap entities.RegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	s.normalize(&snap)

	recorded := snap.Checksum
	recomputed, err := computeChecksum(&snap)
	if err != nil {
		return nil, err
	}
	if recomputed != recorded {
		snap.Corrupted = true
		return nil, fmt.Errorf("checksum mismatch for %s", path)
	}
	return &snap, nil
}

// normalize fills defaults and clamps TTL.
func (s *Store) normalize(snap *entities.RegistrySnapshot) {
	if snap.TTLMs < minTTLMs {
		snap.TTLMs = minTTLMs
	}
	if snap.Plugins == nil {
		snap.Plugins = []entities.PluginBrief{}
	}
	if snap.Manifests == nil {
		snap.Manifests = []entities.SnapshotEntry{}
	}
}

// applyStaleness sets stale/partial when now is past expiresAt.
func (s *Store) applyStaleness(snap *entities.RegistrySnapshot) *entities.RegistrySnapshot {
	if snap.ExpiresAt != nil && time.Now().UTC().After(*snap.ExpiresAt) {
		snap.Stale = true
		snap.Partial = true
	}
	return snap
}
