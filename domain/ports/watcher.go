package ports

import "context"

// ChangeFunc is invoked (debounced, coalesced) whenever the watched roots change.
type ChangeFunc func(ctx context.Context)

// Watcher monitors a set of roots for filesystem changes relevant to
// manifest discovery and triggers a debounced, single-flight refresh.
type Watcher interface {
	Start(ctx context.Context, roots []string, onChange ChangeFunc) error
	Close() error
}
