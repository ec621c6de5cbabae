package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// FullName returns the full command name by concatenating the command names of any parents,
// except the name of the CLI itself.
func FullName(cmd *cobra.Command) string {
	name := ""

	for cmd.HasParent() {
		// Prepending, because we are looking up names from the bottom up: render < deployctl
		// which ends up correctly as 'render' (sans deployctl).
		name = fmt.Sprintf("%s %s", cmd.Name(), name)
		cmd = cmd.Parent()
	}

	return strings.TrimSpace(name)
}
