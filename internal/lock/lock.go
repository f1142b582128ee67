// Package lock guards a single output path against concurrent digestctl
// runs, the same shape as the teacher's quota.Manager guards quota.json:
// acquire an exclusive flock on a sidecar ".lock" file before touching
// the real path, release it once the write is durable.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Acquire takes an exclusive lock on path+".lock", creating its parent
// directory if needed. The caller must call the returned release func,
// typically via defer, once the guarded write is complete.
func Acquire(path string) (func(), error) {
	lockPath := path + ".lock"
	if dir := filepath.Dir(lockPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating lock directory: %w", err)
		}
	}

	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring lock on %s: %w", lockPath, err)
	}
	return func() { _ = fl.Unlock() }, nil
}
