package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

var spinnerSpeed = 1 * time.Second
var spinnerInstance = spinner.New(spinner.CharSets[14], spinnerSpeed)

// Interactive controls whether spinners and progress bars are drawn. It defaults to true when stdout is a terminal.
var Interactive = isTerm(os.Stdout.Fd())

func isTerm(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Show starts showing a progress spinner.
func Show(text string, args ...interface{}) *spinner.Spinner {
	message := " " + fmt.Sprintf(text, args...)
	spinnerInstance.Suffix = message
	spinnerInstance.Stop()
	if Interactive {
		spinnerInstance.Start()
	}
	return spinnerInstance
}

// Stop stops the progress spinner.
func Stop() {
	spinnerInstance.Stop()
}

// NewBar returns a byte counting progress bar of the given size. The bar is silent when not Interactive.
func NewBar(size int64, description ...string) *progressbar.ProgressBar {
	if Interactive {
		return progressbar.DefaultBytes(size, description...)
	}
	return progressbar.DefaultBytesSilent(size, description...)
}

// ReadSeeker is a wrapper around io.ReadSeeker that updates a progress bar.
type ReadSeeker struct {
	io.ReadSeeker
	bar *progressbar.ProgressBar
}

// NewReadSeeker returns a new ReadSeeker with the given bar.
func NewReadSeeker(r io.ReadSeeker, bar *progressbar.ProgressBar) ReadSeeker {
	return ReadSeeker{
		ReadSeeker: r,
		bar:        bar,
	}
}

func (r *ReadSeeker) Seek(offset int64, whence int) (int64, error) {
	// Resetting the progress bar is a rather buggy operation at the time of
	// writing. You just end up with multiple bars. Ignore the
	// seek operation in regard to the progress bar.
	return r.ReadSeeker.Seek(offset, whence)
}

func (r *ReadSeeker) Read(p []byte) (n int, err error) {
	n, err = r.ReadSeeker.Read(p)
	_ = r.bar.Add(n)
	return
}

// Close finishes the progress bar and closes the underlying reader, if it is closable.
func (r *ReadSeeker) Close() (err error) {
	_ = r.bar.Finish()
	if closer, ok := r.ReadSeeker.(io.Closer); ok {
		return closer.Close()
	}
	return
}
