// Package tar implements gzip compressed tar archiving for archive.Writer.
package tar

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/deployignore"
	"github.com/qbpharma/deployctl/internal/fpath"
)

// Writer is a wrapper around tar.Writer and gzip.Writer and implements .tar.gz archiving for archive.Writer.
type Writer struct {
	W  *tar.Writer
	Z  *gzip.Writer
	M  deployignore.Matcher
	fd io.Closer
}

// NewFileWriter returns a new Writer that archives files to name.
func NewFileWriter(name string, matcher deployignore.Matcher) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	w := New(f, matcher)
	w.fd = f

	return w, nil
}

// New returns a new Writer that archives files to the specified io.Writer.
func New(f io.Writer, matcher deployignore.Matcher) *Writer {
	z := gzip.NewWriter(f)
	return &Writer{W: tar.NewWriter(z), Z: z, M: matcher}
}

// Add adds the file or folder at src to the destination dst in the archive and returns a count of
// the files added to the archive. Folders are walked recursively and only their regular files are
// added, each under its path relative to src.
func (w *Writer) Add(src, dst string) (int, error) {
	finfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if !finfo.IsDir() {
		return 1, w.addFile(src, path.Join(dst, finfo.Name()), finfo)
	}

	count := 0
	err = fpath.WalkFiles(src, w.M, func(p, rel string, info fs.FileInfo) error {
		if err := w.addFile(p, path.Join(dst, rel), info); err != nil {
			return err
		}
		count++
		return nil
	})

	return count, err
}

func (w *Writer) addFile(src, name string, finfo fs.FileInfo) error {
	log.Debug().Str("name", name).Msg("Adding to archive")

	header, err := tar.FileInfoHeader(finfo, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := w.W.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w.W, f)
	return err
}

// Close closes the archive. Adding more files to the archive is not possible after this.
func (w *Writer) Close() error {
	if err := w.W.Close(); err != nil {
		return err
	}
	if err := w.Z.Close(); err != nil {
		return err
	}
	if w.fd != nil {
		return w.fd.Close()
	}
	return nil
}
