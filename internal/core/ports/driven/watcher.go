package driven

import "context"

// DirWatcher reports changes within a directory.
type DirWatcher interface {
	// Watch starts watching dir. The returned channel receives the path of
	// each changed file and is closed when ctx is cancelled.
	Watch(ctx context.Context, dir string) (<-chan string, error)
}
