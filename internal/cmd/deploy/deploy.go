// Package deploy provides the commands that run a deployment: deploy, render and remote.
package deploy

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qbpharma/deployctl/internal/cmd"
	"github.com/qbpharma/deployctl/internal/config"
	"github.com/qbpharma/deployctl/internal/deploy"
	"github.com/qbpharma/deployctl/internal/flags"
	"github.com/qbpharma/deployctl/internal/http"
	"github.com/qbpharma/deployctl/internal/notification/slack"
	"github.com/qbpharma/deployctl/internal/report"
	"github.com/qbpharma/deployctl/internal/report/table"
	"github.com/qbpharma/deployctl/internal/version"
)

var (
	deployUse   = "deploy"
	deployShort = "Archives the build, uploads it and writes the deploy script"
	deployLong  = `Packages the build directory, uploads the archive to an anonymous file host and writes a
shell script that installs nginx on your server and serves the build from it.

Run the script on your server to complete the deployment. Running deployctl without a
command is the same as running 'deployctl deploy'.`
	deployExample = `  deployctl --server 203.0.113.10
  deployctl deploy -c .deployctl.yml --template simple`
)

// gFlags contains all global flags that are shared by the deployment commands.
var gFlags = globalFlags{}

type globalFlags struct {
	cfgFilePath string
}

// BindFlags declares the flags shared by all deployment commands on fs and binds them to their config fields.
func BindFlags(fs *pflag.FlagSet) {
	sc := flags.NewSnakeCharmer(fs)

	fs.StringVarP(&gFlags.cfgFilePath, "config", "c", deploy.DefaultConfigFile, "Specifies which config file to use")

	sc.String("build-dir", "buildDir", "", "The directory holding the built frontend (default: ./frontend/dist)")
	sc.String("format", "archive::format", "", "The archive format, tgz or zip (default: tgz)")
	sc.StringSlice("exclude", "archive::exclude", []string{}, "Glob patterns of files to leave out of the archive, e.g. '**/*.map'")

	// Server
	sc.String("server", "server::address", "", "Host name or IP address of the target server. Also used as nginx server_name.")
	sc.Env("server::address", "DEPLOYCTL_SERVER")
	sc.String("user", "server::user", "", "The SSH user (default: root)")
	sc.Int("port", "server::port", 0, "The SSH port (default: 22)")
	sc.String("known-hosts", "server::knownHosts", "", "The known_hosts file to verify the server against (default: ~/.ssh/known_hosts)")
	sc.Bool("insecure-host-key", "server::insecureHostKey", false, "Skips verification of the server's host key. Not recommended.")

	// Site
	sc.String("site", "site::name", "", "The site name (default: qb-pharma)")
	sc.String("web-root", "site::webRoot", "", "The directory the build is served from (default: /var/www/<site>)")

	// Upload
	sc.String("provider", "upload::provider", "", fmt.Sprintf("The file host to upload to, one of %v (default: fileio)", http.Providers))
	sc.String("upload-endpoint", "upload::endpoint", "", "Overrides the file host's URL")
	sc.Duration("upload-timeout", "upload::timeout", 0, "Upload timeout. Supports duration values like '30s', '5m' etc. (default: 5m)")
	sc.Int("upload-retries", "upload::retries", 0, "Number of additional upload attempts on transient failures")

	// Script
	sc.String("template", "script::template", "", "The deploy script template, auto, simple or hardened (default: auto)")
	sc.String("output", "script::output", "", "The directory the deploy script is written to (default: .)")

	// Reporters
	sc.String("json-report", "reporters::json::filename", "", "Writes the deployment summary as JSON to the given file")

	if err := sc.BindAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind flags.")
	}
}

// Command creates the `deploy` command
func Command() *cobra.Command {
	return &cobra.Command{
		Use:     deployUse,
		Short:   deployShort,
		Long:    deployLong,
		Example: deployExample,
		Args:    cobra.NoArgs,
		Run:     RunFunc,
	}
}

// RunFunc runs the deployment and terminates the process with a non-zero exit code on failure.
// It's used by both the root and the `deploy` command.
func RunFunc(c *cobra.Command, _ []string) {
	if err := Run(c); err != nil {
		log.Err(err).Msgf("failed to execute %s command", commandName(c))
		os.Exit(1)
	}
}

// Run runs the public upload deployment.
func Run(c *cobra.Command) error {
	log.Info().Msgf("Running deployctl version %s", version.Version)

	p, err := LoadProject()
	if err != nil {
		return err
	}

	client := http.NewRetryableClient(p.Upload.Timeout, p.Upload.Retries)
	up, err := http.NewUploader(p.Upload.Provider, p.Upload.Endpoint, client)
	if err != nil {
		return err
	}

	r := deploy.Runner{
		Project:   p,
		Uploader:  up,
		Notifier:  newNotifier(p),
		Reporters: newReporters(),
		Out:       c.OutOrStdout(),
	}
	_, err = r.Run(c.Context())
	return err
}

// LoadProject reads the config file given by --config, applies flags, environment and defaults, and validates the
// result. A missing default config file is not an error.
func LoadProject() (*deploy.Project, error) {
	cfgPath := gFlags.cfgFilePath
	if cfgPath == deploy.DefaultConfigFile {
		if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("config", cfgPath).Msg("No config file found. Using flags and defaults.")
			cfgPath = ""
		}
	}

	if cfgPath != "" {
		d, err := config.Describe(cfgPath)
		if err != nil {
			return nil, err
		}
		if d.Kind != "" && d.Kind != deploy.Kind {
			return nil, fmt.Errorf("unsupported config kind '%s', expected '%s'", d.Kind, deploy.Kind)
		}
		config.ValidateSchema(os.Stdout, cfgPath, deploy.SchemaName, deploy.Schema)
	}

	p, err := deploy.FromFile(cfgPath)
	if err != nil {
		return nil, err
	}
	p.SetDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func newNotifier(p *deploy.Project) *slack.Reporter {
	return &slack.Reporter{
		Token:  os.Getenv("SLACK_TOKEN"),
		Config: p.Notifications.Slack,
	}
}

func newReporters() []report.Reporter {
	return []report.Reporter{
		&table.Reporter{Dst: os.Stdout},
	}
}

func commandName(c *cobra.Command) string {
	if name := cmd.FullName(c); name != "" {
		return name
	}
	return deployUse
}
