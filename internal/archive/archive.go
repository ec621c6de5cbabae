package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/archive/tar"
	"github.com/qbpharma/deployctl/internal/archive/zip"
	"github.com/qbpharma/deployctl/internal/deployignore"
	"github.com/qbpharma/deployctl/internal/fileio"
	"github.com/qbpharma/deployctl/internal/human"
)

type Writer interface {
	io.Closer

	// Add adds the src file or folder to the destination dst in the archive and returns the number of files added.
	Add(src, dst string) (int, error)
}

// Format is the archive container format.
type Format string

// Supported archive formats.
const (
	FormatTarGz Format = "tgz"
	FormatZip   Format = "zip"
)

// ParseFormat returns the Format for s. An empty string yields FormatTarGz.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTarGz, "tar.gz":
		return FormatTarGz, nil
	case FormatZip:
		return FormatZip, nil
	}
	return "", fmt.Errorf("unknown archive format '%s', expected one of: %s, %s", s, FormatTarGz, FormatZip)
}

// Ext returns the file extension for archives of this format, including the leading dot.
func (f Format) Ext() string {
	if f == FormatZip {
		return ".zip"
	}
	return ".tar.gz"
}

// MissingInputError is returned when the build directory to archive does not exist.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("build directory not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// Options controls what Create archives.
type Options struct {
	// Dir is the build directory.
	Dir string
	// Format is the container format. Defaults to FormatTarGz.
	Format Format
	// Exclude holds additional glob patterns (doublestar syntax) of files to leave out.
	Exclude []string
}

// Archive describes an archive created by Create.
type Archive struct {
	Path      string
	Format    Format
	FileCount int
	Size      int64
}

// Name returns the file name the archive should have on the remote end, e.g. "site.tar.gz".
func (a Archive) Name(base string) string {
	return base + a.Format.Ext()
}

// Create archives every regular file below opts.Dir into a new temp file and returns its description.
// File paths inside the archive are relative to opts.Dir. No file is left behind on failure.
// It's the caller's responsibility to remove Archive.Path with Remove once done.
func Create(opts Options) (Archive, error) {
	finfo, err := os.Stat(opts.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Archive{}, &MissingInputError{Path: opts.Dir, Err: err}
		}
		return Archive{}, err
	}
	if !finfo.IsDir() {
		return Archive{}, &MissingInputError{Path: opts.Dir, Err: fmt.Errorf("%s is not a directory", opts.Dir)}
	}

	if opts.Format == "" {
		opts.Format = FormatTarGz
	}

	matcher, err := deployignore.ForDir(opts.Dir)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to read %s: %w", deployignore.FileName, err)
	}
	matcher = deployignore.WithGlobs(matcher, opts.Exclude)

	start := time.Now()

	name, err := fileio.TempName(opts.Format.Ext())
	if err != nil {
		return Archive{}, err
	}
	track(name)

	count, err := write(name, opts.Format, opts.Dir, matcher)
	if err != nil {
		_ = Remove(name)
		return Archive{}, err
	}

	f, err := os.Stat(name)
	if err != nil {
		_ = Remove(name)
		return Archive{}, err
	}

	log.Info().Dur("durationMs", time.Since(start)).Str("size", human.Bytes(f.Size())).
		Int("fileCount", count).Msg("Build archived.")
	if count == 0 {
		log.Warn().Str("dir", opts.Dir).Msg("The build directory contains no files.")
	}

	return Archive{Path: name, Format: opts.Format, FileCount: count, Size: f.Size()}, nil
}

func write(name string, format Format, dir string, matcher deployignore.Matcher) (int, error) {
	var w Writer
	var err error
	switch format {
	case FormatZip:
		w, err = zip.NewFileWriter(name, matcher)
	default:
		w, err = tar.NewFileWriter(name, matcher)
	}
	if err != nil {
		return 0, err
	}

	count, err := w.Add(dir, "")
	if err != nil {
		_ = w.Close()
		return 0, err
	}

	return count, w.Close()
}
