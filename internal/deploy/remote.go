package deploy

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qbpharma/deployctl/internal/credentials"
	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/notification"
	"github.com/qbpharma/deployctl/internal/report"
	"github.com/qbpharma/deployctl/internal/script"
	"github.com/qbpharma/deployctl/internal/ssh"
)

// RemoteClient is an SSH connection to the target server.
type RemoteClient interface {
	ssh.SessionClient
	io.Closer
}

// Dialer connects to the server described by cfg.
type Dialer func(ctx context.Context, cfg ssh.Config) (RemoteClient, error)

// DialSSH is the Dialer used in production.
func DialSSH(ctx context.Context, cfg ssh.Config) (RemoteClient, error) {
	c, err := ssh.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RemoteRunner archives the build, copies it to the server over SSH and runs the deploy script there. Unlike Runner,
// the build is never published.
type RemoteRunner struct {
	Project     *Project
	Credentials credentials.Credentials
	Dial        Dialer
	Notifier    notification.Notifier
	Reporters   []report.Reporter
	// DialTimeout limits establishing the SSH connection.
	DialTimeout time.Duration
}

// Run executes the remote deployment. The local temporary archive is removed before Run returns, regardless of the
// outcome.
func (r *RemoteRunner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	err := r.run(ctx, &res)
	finish(ctx, r.Project, &res, start, err, r.Notifier, r.Reporters)

	if err != nil {
		msg.LogDeployFailure()
	} else {
		msg.LogDeploySuccess(res.URL)
	}

	return res, err
}

func (r *RemoteRunner) run(ctx context.Context, res *Result) error {
	if err := validateProject(r.Project, res); err != nil {
		return err
	}

	a, err := createArchive(r.Project, res)
	if err != nil {
		return err
	}
	defer removeArchive(a.Path)

	cfg := r.sshConfig()

	started := time.Now()
	log.Info().Str("server", cfg.Target()).Str("user", cfg.User).Msg("Connecting to server.")
	dial := r.Dial
	if dial == nil {
		dial = DialSSH
	}
	client, err := dial(ctx, cfg)
	res.track(StepConnect, started, cfg.Target(), err)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cfg.Target(), err)
	}
	defer client.Close()

	started = time.Now()
	remotePath := ssh.TempPath(a.Format.Ext())
	p := r.Project.ScriptParams("", a.Format)
	p.Source = remotePath
	b, err := script.Render(r.Project.Script.Template, p)
	if err != nil {
		res.track(StepDeploy, started, "", err)
		return err
	}

	w := &ssh.LogWriter{Host: r.Project.Server.Address}
	d := ssh.Deployer{
		Client: client,
		Sudo:   cfg.User != "root",
		Output: w,
	}
	err = d.Deploy(ctx, a.Path, remotePath, b)
	w.Flush()

	siteURL := "http://" + r.Project.Server.Address + "/"
	res.track(StepDeploy, started, siteURL, err)
	if err != nil {
		return err
	}
	res.URL = siteURL

	return nil
}

func (r *RemoteRunner) sshConfig() ssh.Config {
	user := r.Project.Server.User
	if r.Credentials.User != "" {
		user = r.Credentials.User
	}

	return ssh.Config{
		Address:         r.Project.Server.Address,
		Port:            r.Project.Server.Port,
		User:            user,
		Password:        r.Credentials.Password,
		KeyFile:         r.Credentials.KeyFile,
		Passphrase:      r.Credentials.Passphrase,
		KnownHosts:      r.Project.Server.KnownHosts,
		InsecureHostKey: r.Project.Server.InsecureHostKey,
		Timeout:         r.DialTimeout,
	}
}
