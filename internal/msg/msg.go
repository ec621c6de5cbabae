package msg

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
)

// Logo is an eyecatcher message printed at the start of a deployment.
const Logo = `
      _            _                  _   _ 
   __| | ___ _ __ | | ___  _   _  ___| |_| |
  / _' |/ _ \ '_ \| |/ _ \| | | |/ __| __| |
 | (_| |  __/ |_) | | (_) | |_| | (__| |_| |
  \__,_|\___| .__/|_|\___/ \__, |\___|\__|_|
            |_|            |___/            `

// PublicUploadWarning explains the exposure of uploading the build to a public file host.
const PublicUploadWarning = `The build archive is about to be uploaded to a public, anonymous file host. Anyone who
obtains the download link can fetch it, and the link remains valid until the host expires it.

If the build contains anything that must not be public, use 'deployctl remote' instead,
which copies the archive straight to your server over SSH.`

// LogPublicUploadWarning prints out a formatted and color coded version of PublicUploadWarning.
func LogPublicUploadWarning() {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("\n%s: %s\n\n", yellow("WARNING"), PublicUploadWarning)
}

// LogInstructions prints the hand-off for the operator: how to reach the server and how to run the deploy script at
// path, followed by the script itself. The script installs packages, so users other than root run it through sudo.
func LogInstructions(w io.Writer, user, address, path string, script []byte) {
	bold := color.New(color.Bold).SprintFunc()
	target := fmt.Sprintf("%s@%s", user, address)

	fmt.Fprintf(w, "\n%s %s\n\n", bold("Deploy script created:"), path)
	fmt.Fprintln(w, bold("To deploy on your server, run:"))
	fmt.Fprintf(w, "  scp %s %s:\n", path, target)
	if user == "root" {
		fmt.Fprintf(w, "  ssh %s 'bash %s'\n\n", target, filepath.Base(path))
		fmt.Fprintf(w, "%s ssh %s\n", bold("Or connect with"), target)
		fmt.Fprintln(w, bold("then paste and run this script:"))
	} else {
		fmt.Fprintf(w, "  ssh -t %s 'sudo bash %s'\n\n", target, filepath.Base(path))
		fmt.Fprintf(w, "%s ssh %s\n", bold("Or connect with"), target)
		fmt.Fprintln(w, bold("then run 'sudo bash', paste this script and press Ctrl-D:"))
	}
	fmt.Fprintf(w, "\n%s\n", script)
}

// LogDeploySuccess prints out a success summary statement.
func LogDeploySuccess(url string) {
	line := fmt.Sprintf(" Your site will be available at %s ", url)
	dashes := strings.Repeat("─", len(line))
	log.Info().Msgf("┌%s┐", dashes)
	log.Info().Msg(line)
	log.Info().Msgf("└%s┘", dashes)
}

// LogDeployFailure prints out a failure summary statement.
func LogDeployFailure() {
	log.Error().Msg("┌────────────────────┐")
	log.Error().Msg(" Deployment failed! ")
	log.Error().Msg("└────────────────────┘")
}
