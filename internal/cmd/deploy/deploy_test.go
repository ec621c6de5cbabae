package deploy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/qbpharma/deployctl/internal/viper"
)

func newRoot(args ...string) *cobra.Command {
	viper.Reset()
	retrievalURL = ""

	root := &cobra.Command{Use: "deployctl"}
	BindFlags(root.PersistentFlags())
	root.AddCommand(Command(), RenderCommand(), RemoteCommand())
	root.SetArgs(args)
	return root
}

func TestLoadProject_Flags(t *testing.T) {
	defer viper.Reset()

	root := newRoot()
	require.NoError(t, root.ParseFlags([]string{"--server", "203.0.113.10", "--site", "shop", "--provider", "transfersh", "--exclude", "**/*.map,*.txt"}))

	p, err := LoadProject()
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.10", p.Server.Address)
	assert.Equal(t, "shop", p.Site.Name)
	assert.Equal(t, "/var/www/shop", p.Site.WebRoot)
	assert.Equal(t, "transfersh", p.Upload.Provider)
	assert.Equal(t, []string{"**/*.map", "*.txt"}, p.Archive.Exclude)
	assert.Equal(t, "./frontend/dist", p.BuildDir)
}

func TestLoadProject_Env(t *testing.T) {
	defer viper.Reset()
	t.Setenv("DEPLOYCTL_SERVER", "198.51.100.7")

	root := newRoot()
	require.NoError(t, root.ParseFlags(nil))

	p, err := LoadProject()
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.7", p.Server.Address)
}

func TestLoadProject_ConfigFile(t *testing.T) {
	defer viper.Reset()

	dir := fs.NewDir(t, "project", fs.WithFile("deploy.yml", `apiVersion: v1alpha
kind: deploy
server:
  address: 203.0.113.10
site:
  name: shop
`))
	defer dir.Remove()

	root := newRoot()
	require.NoError(t, root.ParseFlags([]string{"-c", dir.Join("deploy.yml"), "--site", "override"}))

	p, err := LoadProject()
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.10", p.Server.Address)
	assert.Equal(t, "override", p.Site.Name, "flags take precedence over the config file")
}

func TestLoadProject_Errors(t *testing.T) {
	defer viper.Reset()

	dir := fs.NewDir(t, "project",
		fs.WithFile("cypress.yml", "apiVersion: v1\nkind: cypress\n"),
	)
	defer dir.Remove()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no server", args: nil, wantErr: "no server address set"},
		{name: "missing explicit config", args: []string{"-c", dir.Join("nope.yml"), "--server", "x"}, wantErr: "failed to locate deploy configuration"},
		{name: "wrong kind", args: []string{"-c", dir.Join("cypress.yml")}, wantErr: "unsupported config kind 'cypress'"},
		{name: "unknown provider", args: []string{"--server", "x", "--provider", "s3"}, wantErr: "unknown upload provider 's3'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRoot()
			require.NoError(t, root.ParseFlags(tt.args))

			_, err := LoadProject()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRender(t *testing.T) {
	defer viper.Reset()
	out := t.TempDir()

	root := newRoot("render", "--url", "https://example.test/abc123", "--server", "203.0.113.10", "--output", out)
	var buf bytes.Buffer
	root.SetOut(&buf)
	require.NoError(t, root.Execute())

	b, err := os.ReadFile(filepath.Join(out, "auto_deploy.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "https://example.test/abc123")
	assert.Contains(t, string(b), "server_name 203.0.113.10;")
	assert.Contains(t, buf.String(), "ssh root@203.0.113.10")
}

func TestRender_MissingURL(t *testing.T) {
	defer viper.Reset()

	root := newRoot()
	assert.EqualError(t, Render(root), "no retrieval URL given, use --url")
}
