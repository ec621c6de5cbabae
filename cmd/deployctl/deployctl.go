package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qbpharma/deployctl/internal/archive"
	"github.com/qbpharma/deployctl/internal/cmd/completion"
	"github.com/qbpharma/deployctl/internal/cmd/configure"
	"github.com/qbpharma/deployctl/internal/cmd/deploy"
	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/progress"
	"github.com/qbpharma/deployctl/internal/version"
)

var (
	cmdUse   = "deployctl [OPTIONS] [COMMAND]"
	cmdShort = "deployctl"
	cmdLong  = msg.Logo + `

Deploys a pre-built frontend to a server running nginx.

Without a command, deployctl archives ./frontend/dist, uploads the archive and writes
auto_deploy.sh for you to run on the server. See 'deployctl remote' to deploy over SSH
without a public upload.`
)

func main() {
	cmd := &cobra.Command{
		Use:              cmdUse,
		Short:            cmdShort,
		Long:             cmdLong,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		Version:          fmt.Sprintf("%s\n(build %s)", version.Version, version.GitCommit),
		Run:              deploy.RunFunc,
	}

	cmd.SetVersionTemplate("deployctl version {{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "print version")

	verbosity := cmd.PersistentFlags().Bool("verbose", false, "turn on verbose logging")
	noColor := cmd.PersistentFlags().Bool("no-color", false, "disable colorized output")
	deploy.BindFlags(cmd.PersistentFlags())

	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		setupLogging(*verbosity, *noColor)
	}

	cmd.AddCommand(
		deploy.Command(),
		deploy.RenderCommand(),
		deploy.RemoteCommand(),
		configure.Command(),
		completion.Command(),
	)

	if err := cmd.ExecuteContext(newContext()); err != nil {
		os.Exit(1)
	}
}

func setupLogging(verbose bool, noColor bool) {
	color.NoColor = noColor
	if noColor {
		progress.Interactive = false
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DurationFieldInteger = true
	timeFormat := "15:04:05"
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.TimeFieldFormat = time.RFC3339Nano
		timeFormat = "15:04:05.000"
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.Local)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat, NoColor: noColor})
}

// newContext returns a new context that is canceled when a SIGINT is received.
func newContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			if ctx.Err() != nil {
				// Deferred cleanup does not run on os.Exit.
				archive.RemoveAll()
				os.Exit(1)
			}

			println("\nWaiting for the current step to stop and clean up... (press Ctrl-c again to exit without waiting)\n")
			cancel()
		}
	}()

	return ctx
}
