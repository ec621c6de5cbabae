package deploy

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qbpharma/deployctl/internal/credentials"
	"github.com/qbpharma/deployctl/internal/deploy"
	"github.com/qbpharma/deployctl/internal/version"
)

var (
	remoteUse   = "remote"
	remoteShort = "Copies the build to the server over SSH and deploys it there"
	remoteLong  = `Packages the build directory, copies the archive to your server over SSH and runs the
deploy script there. The build is never uploaded to a public file host.

Authentication uses, in that order of preference, the key file and password from the
environment (DEPLOYCTL_SSH_KEY, DEPLOYCTL_SSH_PASSWORD) or from 'deployctl configure',
and finally a running ssh-agent. The server's host key must be in your known_hosts file.`
	remoteExample = `  deployctl remote --server 203.0.113.10 --user deploy`

	// dialTimeout limits establishing the SSH connection.
	dialTimeout = 30 * time.Second
)

// RemoteCommand creates the `remote` command
func RemoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     remoteUse,
		Short:   remoteShort,
		Long:    remoteLong,
		Example: remoteExample,
		Args:    cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			if err := Remote(c); err != nil {
				log.Err(err).Msg("failed to execute remote command")
				os.Exit(1)
			}
		},
	}
}

// Remote runs the SSH deployment.
func Remote(c *cobra.Command) error {
	log.Info().Msgf("Running deployctl version %s", version.Version)

	p, err := LoadProject()
	if err != nil {
		return err
	}

	creds := credentials.Get()
	if creds.IsEmpty() && os.Getenv("SSH_AUTH_SOCK") == "" {
		color.Red("\ndeployctl needs a way to log in to your server!\n\n")
		fmt.Println(`Set up your SSH credentials by running:
> deployctl configure`)
		println()
		return fmt.Errorf("no credentials set")
	}
	if creds.Source != "" {
		log.Debug().Str("source", creds.Source).Msg("Using SSH credentials.")
	}

	r := deploy.RemoteRunner{
		Project:     p,
		Credentials: creds,
		Dial:        deploy.DialSSH,
		Notifier:    newNotifier(p),
		Reporters:   newReporters(),
		DialTimeout: dialTimeout,
	}
	_, err = r.Run(c.Context())
	return err
}
