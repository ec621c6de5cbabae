package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xtgo/uuid"
	"golang.org/x/crypto/ssh"

	"github.com/qbpharma/deployctl/internal/script"
)

// TempPath returns a unique path in the remote /tmp for an archive with the file extension ext.
func TempPath(ext string) string {
	return fmt.Sprintf("/tmp/deployctl-%s%s", uuid.NewRandom().String(), ext)
}

// Deployer copies an archive to the server and runs a deploy script against it.
type Deployer struct {
	Client SessionClient
	// Sudo runs the deploy script through sudo, for users other than root.
	Sudo bool
	// Output receives the combined output of the deploy script.
	Output io.Writer
}

// Deploy streams the archive at archivePath to remotePath, runs deployScript with bash and finally removes
// remotePath. The remote file is removed even if the script fails.
func (d *Deployer) Deploy(ctx context.Context, archivePath, remotePath string, deployScript []byte) error {
	if err := d.upload(ctx, archivePath, remotePath); err != nil {
		return fmt.Errorf("failed to copy archive to server: %w", err)
	}
	defer d.remove(remotePath)

	cmd := "bash -s"
	if d.Sudo {
		cmd = "sudo -n bash -s"
	}

	start := time.Now()
	log.Info().Msg("Running deploy script on server.")
	if err := d.run(ctx, cmd, bytes.NewReader(deployScript), d.Output); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("deploy script exited with status %d", exitErr.ExitStatus())
		}
		return fmt.Errorf("failed to run deploy script: %w", err)
	}
	log.Info().Int64("durationMs", time.Since(start).Milliseconds()).Msg("Deploy script finished.")

	return nil
}

func (d *Deployer) upload(ctx context.Context, archivePath, remotePath string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Info().Str("path", remotePath).Msg("Copying archive to server.")
	return d.run(ctx, "umask 077 && cat > "+script.Quote(remotePath), f, nil)
}

func (d *Deployer) remove(remotePath string) {
	if err := d.run(context.Background(), "rm -f "+script.Quote(remotePath), nil, nil); err != nil {
		log.Warn().Err(err).Str("path", remotePath).Msg("Failed to remove archive from server.")
	}
}

// run executes cmd in a fresh session. The session is closed when ctx is done, which aborts the command.
func (d *Deployer) run(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer) error {
	sess, err := d.Client.NewSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	var stderr bytes.Buffer
	errOut := io.Writer(&stderr)
	if stdout != nil {
		errOut = stdout
	}

	done := make(chan error, 1)
	go func() { done <- sess.Run(cmd, stdin, stdout, errOut) }()

	select {
	case err := <-done:
		if err != nil && stderr.Len() > 0 {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return err
	case <-ctx.Done():
		_ = sess.Close()
		return ctx.Err()
	}
}

// LogWriter is an io.Writer that logs every complete line it receives.
type LogWriter struct {
	Host string

	mu  sync.Mutex
	buf []byte
}

func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.log(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush logs any trailing partial line.
func (w *LogWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.log(string(w.buf))
		w.buf = nil
	}
}

func (w *LogWriter) log(line string) {
	line = strings.TrimRight(line, "\r")
	log.Info().Str("host", w.Host).Msg(line)
}
