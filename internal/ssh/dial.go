// Package ssh copies build archives to the target server and runs the deploy script there.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/qbpharma/deployctl/internal/msg"
)

// Config describes how to reach and authenticate against the target server.
type Config struct {
	Address string
	Port    int
	User    string

	Password   string
	KeyFile    string
	Passphrase string

	// KnownHosts is the known_hosts file the host key is verified against. A leading ~ is expanded.
	KnownHosts string
	// InsecureHostKey disables host key verification.
	InsecureHostKey bool

	Timeout time.Duration
}

// Target returns the host:port the client connects to.
func (c Config) Target() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Address, strconv.Itoa(port))
}

// Client is an established SSH connection that hands out command sessions.
type Client struct {
	c *ssh.Client
}

// NewSession opens a new session on the connection.
func (c *Client) NewSession() (Session, error) {
	s, err := c.c.NewSession()
	if err != nil {
		return nil, err
	}
	return &sshSession{s: s}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.c.Close()
}

// Dial establishes an SSH client connection to the server described by cfg.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	auths, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCB, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auths,
		HostKeyCallback: hostKeyCB,
		Timeout:         cfg.Timeout,
	}

	target := cfg.Target()
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, target, clientCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", target, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{c: ssh.NewClient(c, chans, reqs)}, nil
}

func authMethods(cfg Config) ([]ssh.AuthMethod, error) {
	var auths []ssh.AuthMethod

	if cfg.KeyFile != "" {
		signer, err := loadSigner(expandHome(cfg.KeyFile), cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("load key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		auths = append(auths, ssh.Password(cfg.Password))
	}

	// Try SSH agent if available
	if a := os.Getenv("SSH_AUTH_SOCK"); a != "" {
		if conn, err := net.Dial("unix", a); err == nil {
			ag := agent.NewClient(conn)
			auths = append(auths, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	if len(auths) == 0 {
		return nil, errors.New(msg.MissingAuthMethod)
	}
	return auths, nil
}

func hostKeyCallback(cfg Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureHostKey {
		log.Warn().Str("server", cfg.Address).Msg("Host key verification is disabled.")
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := expandHome(cfg.KnownHosts)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s; add the server with ssh-keyscan or set server.insecureHostKey", path)
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("known_hosts: %w", err)
	}
	return cb, nil
}

// loadSigner loads a private key with optional passphrase
func loadSigner(path, passphrase string) (ssh.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(b, []byte(passphrase))
	}
	s, err := ssh.ParsePrivateKey(b)
	if err == nil {
		return s, nil
	}
	var passphraseMissingError *ssh.PassphraseMissingError
	if errors.As(err, &passphraseMissingError) {
		return nil, fmt.Errorf("private key is encrypted; provide DEPLOYCTL_SSH_PASSPHRASE or run 'deployctl configure'")
	}
	return nil, err
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
