package completion

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	root := &cobra.Command{Use: "deployctl"}
	root.AddCommand(Command())

	for _, shell := range Shells {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			assert.NoError(t, Run(root, &buf, shell))
			assert.Contains(t, buf.String(), "deployctl")
		})
	}

	assert.EqualError(t, Run(root, &bytes.Buffer{}, "tcsh"), "unsupported shell 'tcsh'")
}
