package configure

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/qbpharma/deployctl/internal/credentials"
)

// ListCommand creates the `configure list` command
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "list",
		Aliases: []string{
			"ls",
		},
		Short: "Shows the current SSH credentials",
		Run: func(cmd *cobra.Command, args []string) {
			printCreds(cmd.OutOrStdout(), credentials.Get())
		},
	}

	return cmd
}

func printCreds(w io.Writer, creds credentials.Credentials) {
	if creds.IsEmpty() {
		fmt.Fprintln(w, color.YellowString("No SSH credentials set. Run 'deployctl configure' to set them up."))
		return
	}

	labelStyle := color.New(color.Bold)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\t%s\n", labelStyle.Sprint("User"), orNone(creds.User))
	fmt.Fprintf(w, "%s:\t%s\n", labelStyle.Sprint("Key file"), orNone(creds.KeyFile))
	fmt.Fprintf(w, "%s:\t%s\n", labelStyle.Sprint("Passphrase"), mask(creds.Passphrase))
	fmt.Fprintf(w, "%s:\t%s\n", labelStyle.Sprint("Password"), mask(creds.Password))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Collected from: %s\n", creds.Source)
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}

// mask hides a secret, revealing only whether it's set.
func mask(s string) string {
	if s == "" {
		return "<none>"
	}
	return strings.Repeat("*", 8)
}
