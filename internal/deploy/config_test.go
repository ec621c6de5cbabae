package deploy

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"

	"github.com/qbpharma/deployctl/internal/archive"
	"github.com/qbpharma/deployctl/internal/config"
	"github.com/qbpharma/deployctl/internal/script"
	"github.com/qbpharma/deployctl/internal/viper"
)

const fullConfig = `apiVersion: v1alpha
kind: deploy
buildDir: ./dist
archive:
  format: zip
  exclude:
    - "**/*.map"
server:
  address: 203.0.113.10
  user: deploy
  port: 2222
site:
  name: shop
  cacheAssets: false
upload:
  provider: transfersh
  endpoint: $UPLOAD_ENDPOINT
  timeout: 90s
  retries: 2
script:
  template: simple
notifications:
  slack:
    channels:
      - "#deploys"
`

func TestFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	t.Setenv("UPLOAD_ENDPOINT", "https://files.example.test")

	dir := fs.NewDir(t, "project", fs.WithFile(".deployctl.yml", fullConfig))
	defer dir.Remove()

	p, err := FromFile(dir.Join(".deployctl.yml"))
	require.NoError(t, err)
	p.SetDefaults()

	assert.Equal(t, dir.Join(".deployctl.yml"), p.ConfigFilePath)
	assert.Equal(t, Kind, p.Kind)
	assert.Equal(t, "./dist", p.BuildDir)
	assert.Equal(t, Archive{Format: "zip", Exclude: []string{"**/*.map"}}, p.Archive)
	assert.Equal(t, "203.0.113.10", p.Server.Address)
	assert.Equal(t, "deploy", p.Server.User)
	assert.Equal(t, 2222, p.Server.Port)
	assert.Equal(t, "~/.ssh/known_hosts", p.Server.KnownHosts)
	assert.Equal(t, "shop", p.Site.Name)
	assert.Equal(t, "/var/www/shop", p.Site.WebRoot)
	require.NotNil(t, p.Site.CacheAssets)
	assert.False(t, *p.Site.CacheAssets)
	assert.Equal(t, Upload{Provider: "transfersh", Endpoint: "https://files.example.test", Timeout: 90 * time.Second, Retries: 2}, p.Upload)
	assert.Equal(t, Script{Template: script.Simple, Output: "."}, p.Script)
	assert.Equal(t, config.WhenAlways, p.Notifications.Slack.Send)
	assert.NoError(t, p.Validate())
}

func TestFromFile_Missing(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	_, err := FromFile("/does/not/exist/.deployctl.yml")
	assert.Error(t, err)
}

func TestFromFile_NoFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("server::address", "203.0.113.10")

	p, err := FromFile("")
	require.NoError(t, err)
	p.SetDefaults()

	assert.Equal(t, "203.0.113.10", p.Server.Address)
	assert.Equal(t, "./frontend/dist", p.BuildDir)
	assert.NoError(t, p.Validate())
}

func TestProject_SetDefaults(t *testing.T) {
	p := &Project{}
	p.SetDefaults()

	assert.Equal(t, Kind, p.Kind)
	assert.Equal(t, APIVersion, p.APIVersion)
	assert.Equal(t, "./frontend/dist", p.BuildDir)
	assert.Equal(t, "tgz", p.Archive.Format)
	assert.Equal(t, "root", p.Server.User)
	assert.Equal(t, 22, p.Server.Port)
	assert.Equal(t, "qb-pharma", p.Site.Name)
	assert.Equal(t, "/var/www/qb-pharma", p.Site.WebRoot)
	assert.True(t, *p.Site.CacheAssets)
	assert.Equal(t, "fileio", p.Upload.Provider)
	assert.Equal(t, 5*time.Minute, p.Upload.Timeout)
	assert.Equal(t, 0, p.Upload.Retries)
	assert.Equal(t, script.Auto, p.Script.Template)
	assert.Equal(t, config.When(""), p.Notifications.Slack.Send)
}

func TestProject_Validate(t *testing.T) {
	valid := func() *Project {
		p := &Project{Server: Server{Address: "203.0.113.10"}}
		p.SetDefaults()
		return p
	}

	tests := []struct {
		name    string
		mutate  func(p *Project)
		wantErr string
	}{
		{name: "defaults with address", mutate: func(p *Project) {}},
		{name: "wrong kind", mutate: func(p *Project) { p.Kind = "cypress" }, wantErr: "invalid deploy config"},
		{name: "no server", mutate: func(p *Project) { p.Server.Address = "" }, wantErr: "no server address set"},
		{name: "bad port", mutate: func(p *Project) { p.Server.Port = 70000 }, wantErr: "invalid SSH port 70000"},
		{name: "bad format", mutate: func(p *Project) { p.Archive.Format = "rar" }, wantErr: "unknown archive format 'rar'"},
		{name: "bad provider", mutate: func(p *Project) { p.Upload.Provider = "s3" }, wantErr: "unknown upload provider 's3', must be one of [fileio, transfersh]"},
		{name: "negative timeout", mutate: func(p *Project) { p.Upload.Timeout = -time.Second }, wantErr: "upload timeout must not be negative"},
		{name: "negative retries", mutate: func(p *Project) { p.Upload.Retries = -1 }, wantErr: "upload retries must not be negative"},
		{name: "bad template", mutate: func(p *Project) { p.Script.Template = "fancy" }, wantErr: "unknown script template 'fancy', must be one of [auto, simple, hardened]"},
		{name: "empty build dir", mutate: func(p *Project) { p.BuildDir = "" }, wantErr: "no build directory specified"},
		{name: "bad server address", mutate: func(p *Project) { p.Server.Address = "evil;x" }, wantErr: "invalid server address 'evil;x'"},
		{name: "site name with space", mutate: func(p *Project) { p.Site.Name = "qb pharma" }, wantErr: "invalid site name 'qb pharma'"},
		{name: "web root outside web dirs", mutate: func(p *Project) { p.Site.WebRoot = "/etc" }, wantErr: "invalid web root '/etc'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)

			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestProject_ScriptParams(t *testing.T) {
	p := &Project{Server: Server{Address: "203.0.113.10"}}
	p.SetDefaults()

	got := p.ScriptParams("https://example.test/abc123", archive.FormatZip)
	assert.Equal(t, script.Params{
		URL:           "https://example.test/abc123",
		ServerAddress: "203.0.113.10",
		SiteName:      "qb-pharma",
		WebRoot:       "/var/www/qb-pharma",
		ArchiveName:   "qb-pharma.zip",
		Format:        "zip",
		CacheAssets:   true,
	}, got)
}

func TestSchema(t *testing.T) {
	dir := fs.NewDir(t, "project", fs.WithFile(".deployctl.yml", fullConfig))
	defer dir.Remove()

	var buf bytes.Buffer
	assert.Equal(t, 0, config.ValidateSchema(&buf, dir.Join(".deployctl.yml"), SchemaName, Schema), buf.String())
	assert.Contains(t, Schema, `"const": "deploy"`)
}
