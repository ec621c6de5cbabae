// Package zip implements zip archiving for archive.Writer.
package zip

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/deployignore"
	"github.com/qbpharma/deployctl/internal/fpath"
)

// Writer is a wrapper around zip.Writer and implements zip archiving for archive.Writer.
type Writer struct {
	W  *zip.Writer
	M  deployignore.Matcher
	fd io.Closer
}

// NewFileWriter returns a new Writer that archives files to name.
func NewFileWriter(name string, matcher deployignore.Matcher) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	return &Writer{W: zip.NewWriter(f), M: matcher, fd: f}, nil
}

// New returns a new Writer that archives files to the specified io.Writer.
func New(f io.Writer, matcher deployignore.Matcher) *Writer {
	return &Writer{W: zip.NewWriter(f), M: matcher}
}

// Add adds the file or folder at src to the destination dst in the archive and returns a count of
// the files added to the archive.
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

	header, err := zip.FileInfoHeader(finfo)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	zw, err := w.W.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(zw, f)
	return err
}

// Close closes the archive. Adding more files to the archive is not possible after this.
func (w *Writer) Close() error {
	if err := w.W.Close(); err != nil {
		return err
	}
	if w.fd != nil {
		return w.fd.Close()
	}
	return nil
}
