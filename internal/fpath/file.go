package fpath

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/deployignore"
)

// WalkFunc is called for every regular file found by WalkFiles. path is the location on disk and
// rel the slash-separated path relative to the walked root.
type WalkFunc func(path, rel string, info fs.FileInfo) error

// WalkFiles walks rootDir recursively and calls fn for every regular file that is not excluded by
// matcher. Directories are never reported. Symlinks are followed only when they point to a regular
// file; symlinked directories and dangling symlinks are skipped.
func WalkFiles(rootDir string, matcher deployignore.Matcher, fn WalkFunc) error {
	return filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Normalize path separators, since the target server does not support backslashes.
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		relSlashes := filepath.ToSlash(rel)

		if matcher != nil && matcher.Match(strings.Split(relSlashes, "/"), d.IsDir()) {
			log.Debug().Str("name", relSlashes).Msg("Excluded from archive")
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			if d.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("name", relSlashes).Msg("Skipping dangling symlink")
				return nil
			}
			return err
		}
		if !info.Mode().IsRegular() {
			log.Debug().Str("name", relSlashes).Msg("Skipping non-regular file")
			return nil
		}

		return fn(path, relSlashes, info)
	})
}
