// Package deploy runs the deployment pipeline: archive the build, make it available to the server and hand off the
// deploy script.
package deploy

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/qbpharma/deployctl/internal/archive"
	"github.com/qbpharma/deployctl/internal/config"
	"github.com/qbpharma/deployctl/internal/http"
	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/script"
)

// Config descriptors.
var (
	// Kind represents the type definition of this config.
	Kind = "deploy"

	// APIVersion represents the supported config version.
	APIVersion = "v1alpha"

	// DefaultConfigFile is the config file picked up when none is given explicitly.
	DefaultConfigFile = ".deployctl.yml"
)

// Schema is the JSON schema the config file is validated against.
//
//go:embed schema.json
var Schema string

// SchemaName identifies Schema when validating.
const SchemaName = "https://deployctl.qbpharma.dev/schema/v1alpha.json"

// Project represents the deployment configuration.
type Project struct {
	config.TypeDef `yaml:",inline" mapstructure:",squash"`
	ConfigFilePath string               `yaml:"-" json:"-"`
	BuildDir       string               `yaml:"buildDir,omitempty" json:"buildDir"`
	Archive        Archive              `yaml:"archive,omitempty" json:"archive"`
	Server         Server               `yaml:"server,omitempty" json:"server"`
	Site           Site                 `yaml:"site,omitempty" json:"site"`
	Upload         Upload               `yaml:"upload,omitempty" json:"upload"`
	Script         Script               `yaml:"script,omitempty" json:"script"`
	Reporters      Reporters            `yaml:"reporters,omitempty" json:"-"`
	Notifications  config.Notifications `yaml:"notifications,omitempty" json:"-"`
}

// Archive represents how the build directory is packaged.
type Archive struct {
	Format  string   `yaml:"format,omitempty" json:"format"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude"`
}

// Server represents the target server.
type Server struct {
	Address         string `yaml:"address,omitempty" json:"address"`
	User            string `yaml:"user,omitempty" json:"user"`
	Port            int    `yaml:"port,omitempty" json:"port"`
	KnownHosts      string `yaml:"knownHosts,omitempty" json:"knownHosts"`
	InsecureHostKey bool   `yaml:"insecureHostKey,omitempty" json:"insecureHostKey"`
}

// Site represents the nginx site the build is served as.
type Site struct {
	Name    string `yaml:"name,omitempty" json:"name"`
	WebRoot string `yaml:"webRoot,omitempty" json:"webRoot"`
	// CacheAssets enables long-lived caching of static assets. Defaults to true.
	CacheAssets *bool `yaml:"cacheAssets,omitempty" json:"cacheAssets"`
}

// Upload represents the anonymous file host the archive is published on.
type Upload struct {
	Provider string        `yaml:"provider,omitempty" json:"provider"`
	Endpoint string        `yaml:"endpoint,omitempty" json:"endpoint"`
	Timeout  time.Duration `yaml:"timeout,omitempty" json:"timeout"`
	Retries  int           `yaml:"retries,omitempty" json:"retries"`
}

// Script represents the deploy script settings.
type Script struct {
	Template string `yaml:"template,omitempty" json:"template"`
	// Output is the directory the script is written to.
	Output string `yaml:"output,omitempty" json:"output"`
}

// Reporters represents the reporter configuration.
type Reporters struct {
	JSON struct {
		Filename string `yaml:"filename,omitempty" json:"filename"`
	} `yaml:"json,omitempty" json:"json"`
}

// FromFile creates a new Project based on the filepath cfgPath. An empty cfgPath yields a Project made up of
// flags and environment only.
func FromFile(cfgPath string) (*Project, error) {
	var p *Project

	if err := config.Unmarshal(cfgPath, &p); err != nil {
		return p, err
	}
	if p == nil {
		p = &Project{}
	}

	p.ConfigFilePath = cfgPath

	return p, nil
}

// SetDefaults applies config defaults in case the user has left them blank.
func (p *Project) SetDefaults() {
	if p.Kind == "" {
		p.Kind = Kind
	}

	if p.APIVersion == "" {
		p.APIVersion = APIVersion
	}

	if p.BuildDir == "" {
		p.BuildDir = "./frontend/dist"
	}

	if p.Archive.Format == "" {
		p.Archive.Format = string(archive.FormatTarGz)
	}

	if p.Server.User == "" {
		p.Server.User = "root"
	}
	if p.Server.Port == 0 {
		p.Server.Port = 22
	}
	if p.Server.KnownHosts == "" {
		p.Server.KnownHosts = "~/.ssh/known_hosts"
	}

	if p.Site.Name == "" {
		p.Site.Name = "qb-pharma"
	}
	if p.Site.WebRoot == "" {
		p.Site.WebRoot = "/var/www/" + p.Site.Name
	}
	if p.Site.CacheAssets == nil {
		enabled := true
		p.Site.CacheAssets = &enabled
	}

	if p.Upload.Provider == "" {
		p.Upload.Provider = http.ProviderFileIO
	}
	if p.Upload.Timeout == 0 {
		p.Upload.Timeout = 5 * time.Minute
	}

	if p.Script.Template == "" {
		p.Script.Template = script.Auto
	}
	if p.Script.Output == "" {
		p.Script.Output = "."
	}

	if len(p.Notifications.Slack.Channels) > 0 && p.Notifications.Slack.Send == "" {
		p.Notifications.Slack.Send = config.WhenAlways
	}
}

// Validate validates basic configuration of the project and returns an error if any of the settings contain illegal
// values. This is not an exhaustive operation and further validation should be performed by the caller.
func (p *Project) Validate() error {
	if p.Kind != Kind {
		return errors.New(msg.InvalidDeployConfig)
	}

	if p.BuildDir == "" {
		return errors.New(msg.MissingBuildDir)
	}

	if _, err := archive.ParseFormat(p.Archive.Format); err != nil {
		return fmt.Errorf(msg.UnknownArchiveFormat, p.Archive.Format)
	}

	if p.Server.Address == "" {
		return errors.New(msg.MissingServerAddress)
	}
	if p.Server.Port < 1 || p.Server.Port > 65535 {
		return fmt.Errorf(msg.InvalidPort, p.Server.Port)
	}

	if !slices.Contains(http.Providers, p.Upload.Provider) {
		return fmt.Errorf(msg.UnknownUploadProvider, p.Upload.Provider, strings.Join(http.Providers, ", "))
	}
	if p.Upload.Timeout < 0 {
		return errors.New(msg.InvalidTimeout)
	}
	if p.Upload.Retries < 0 {
		return errors.New(msg.InvalidRetries)
	}

	if !slices.Contains(script.Variants, p.Script.Template) {
		return fmt.Errorf(msg.UnknownScriptTemplate, p.Script.Template, strings.Join(script.Variants, ", "))
	}

	return p.validateScript()
}

// validateScript checks the values that end up in the deploy script, so that a bad server address, site name or web
// root is caught before anything is archived or uploaded.
func (p *Project) validateScript() error {
	format, err := archive.ParseFormat(p.Archive.Format)
	if err != nil {
		return fmt.Errorf(msg.UnknownArchiveFormat, p.Archive.Format)
	}
	return p.ScriptParams("https://example.invalid/"+p.Site.Name+format.Ext(), format).Validate()
}

// ScriptParams returns the script parameters for an archive of format that is retrieved from url.
func (p *Project) ScriptParams(url string, format archive.Format) script.Params {
	return script.Params{
		URL:           url,
		ServerAddress: p.Server.Address,
		SiteName:      p.Site.Name,
		WebRoot:       p.Site.WebRoot,
		ArchiveName:   p.Site.Name + format.Ext(),
		Format:        string(format),
		CacheAssets:   p.Site.CacheAssets == nil || *p.Site.CacheAssets,
	}
}
