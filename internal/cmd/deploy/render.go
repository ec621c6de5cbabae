package deploy

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qbpharma/deployctl/internal/archive"
	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/script"
)

var (
	renderUse     = "render"
	renderShort   = "Writes the deploy script for an archive that is already uploaded"
	renderExample = `  deployctl render --url https://file.io/abc123 --server 203.0.113.10`

	retrievalURL string
)

// RenderCommand creates the `render` command
func RenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     renderUse,
		Short:   renderShort,
		Example: renderExample,
		Args:    cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			if err := Render(c); err != nil {
				log.Err(err).Msg("failed to execute render command")
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&retrievalURL, "url", "", "The URL the server downloads the build archive from")

	return cmd
}

// Render writes the deploy script for the archive at retrievalURL and prints the operator instructions.
func Render(c *cobra.Command) error {
	if retrievalURL == "" {
		return errors.New("no retrieval URL given, use --url")
	}

	p, err := LoadProject()
	if err != nil {
		return err
	}

	format, err := archive.ParseFormat(p.Archive.Format)
	if err != nil {
		return err
	}

	params := p.ScriptParams(retrievalURL, format)
	path, err := script.WriteFile(p.Script.Output, p.Script.Template, params)
	if err != nil {
		return err
	}

	b, err := script.Render(p.Script.Template, params)
	if err != nil {
		return err
	}
	msg.LogInstructions(c.OutOrStdout(), p.Server.User, p.Server.Address, path, b)

	return nil
}
