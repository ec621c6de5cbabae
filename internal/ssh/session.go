package ssh

import (
	"io"

	"golang.org/x/crypto/ssh"
)

// SessionClient is a minimal interface to obtain a command session.
type SessionClient interface {
	NewSession() (Session, error)
}

// Session runs a single remote command.
type Session interface {
	// Run executes cmd with stdin as its input and waits for it to exit. Nil readers and writers are ignored.
	Run(cmd string, stdin io.Reader, stdout, stderr io.Writer) error
	Close() error
}

// sshSession adapts *ssh.Session to Session.
type sshSession struct {
	s *ssh.Session
}

func (w *sshSession) Run(cmd string, stdin io.Reader, stdout, stderr io.Writer) error {
	w.s.Stdin = stdin
	w.s.Stdout = stdout
	w.s.Stderr = stderr
	return w.s.Run(cmd)
}

func (w *sshSession) Close() error {
	return w.s.Close()
}
