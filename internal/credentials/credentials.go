package credentials

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	yamlbase "gopkg.in/yaml.v2"

	"github.com/qbpharma/deployctl/internal/yaml"
)

// DefaultCredsPath is the default location of the credentials file.
var DefaultCredsPath = defaultFilepath()

// Credentials contains what is needed to authenticate against the target server over SSH.
// The user may be left empty, in which case server.user from the config applies.
type Credentials struct {
	User       string `yaml:"user,omitempty"`
	Password   string `yaml:"password,omitempty"`
	KeyFile    string `yaml:"keyFile,omitempty"`
	Passphrase string `yaml:"passphrase,omitempty"`
	Source     string `yaml:"-"`
}

// Get returns the configured credentials.
// Effectively a convenience wrapper around FromEnv, followed by a call to FromFile.
//
// The lookup order is:
//  1. Environment variables (see FromEnv)
//  2. Credentials file (see FromFile)
func Get() Credentials {
	if c := FromEnv(); c.IsSet() {
		return c
	}

	return FromFile()
}

// FromEnv reads the credentials from the user environment.
func FromEnv() Credentials {
	return Credentials{
		User:       os.Getenv("DEPLOYCTL_SSH_USER"),
		Password:   os.Getenv("DEPLOYCTL_SSH_PASSWORD"),
		KeyFile:    os.Getenv("DEPLOYCTL_SSH_KEY"),
		Passphrase: os.Getenv("DEPLOYCTL_SSH_PASSPHRASE"),
		Source:     "Environment variables($DEPLOYCTL_SSH_USER, $DEPLOYCTL_SSH_PASSWORD, $DEPLOYCTL_SSH_KEY, $DEPLOYCTL_SSH_PASSPHRASE)",
	}
}

// FromFile reads the credentials that stored in the default file location.
func FromFile() Credentials {
	return fromFile(DefaultCredsPath)
}

// fromFile reads the credentials from path.
func fromFile(path string) Credentials {
	yamlFile, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// not a real error but a valid usecase when credentials have not been persisted yet
			return Credentials{}
		}

		log.Error().Msgf("failed to read credentials: %v", err)
		return Credentials{}
	}
	defer yamlFile.Close()

	var c Credentials
	if err = yamlbase.NewDecoder(yamlFile).Decode(&c); err != nil {
		log.Error().Msgf("failed to parse credentials: %v", err)
		return Credentials{}
	}
	c.Source = fmt.Sprintf("Credentials file(%s)", path)

	return c
}

// ToFile stores the provided credentials in the default file location.
func ToFile(c Credentials) error {
	return toFile(c, DefaultCredsPath)
}

// toFile stores the provided credentials into the file at path.
func toFile(c Credentials, path string) error {
	if os.MkdirAll(filepath.Dir(path), 0700) != nil {
		return fmt.Errorf("unable to create configuration folder")
	}
	return yaml.WriteFile(path, c, 0600)
}

// defaultFilepath returns the default location of the credentials file.
// It will be based on the user home directory, if defined, or under the current working directory otherwise.
func defaultFilepath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".deployctl", "credentials.yml")
}

// IsSet checks whether the credentials carry a secret to authenticate with, i.e. a password or a key file.
func (c *Credentials) IsSet() bool {
	return c.Password != "" || c.KeyFile != ""
}

// IsEmpty checks whether no credential is set at all.
func (c *Credentials) IsEmpty() bool {
	return c.User == "" && !c.IsSet()
}
