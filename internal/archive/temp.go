package archive

import (
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// live tracks the temp files created by Create that have not been removed yet.
var live = struct {
	sync.Mutex
	paths map[string]struct{}
}{paths: map[string]struct{}{}}

func track(path string) {
	live.Lock()
	live.paths[path] = struct{}{}
	live.Unlock()
}

// Remove deletes the archive at path. A missing file is not an error.
func Remove(path string) error {
	live.Lock()
	delete(live.paths, path)
	live.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll deletes every archive created by this process that is still on disk. It's meant for exits that skip the
// deferred cleanup of the running pipeline.
func RemoveAll() {
	live.Lock()
	paths := make([]string, 0, len(live.paths))
	for p := range live.paths {
		paths = append(paths, p)
	}
	live.Unlock()

	for _, p := range paths {
		if err := Remove(p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to remove temporary archive.")
		}
	}
}
