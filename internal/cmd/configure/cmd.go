package configure

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qbpharma/deployctl/internal/credentials"
	"github.com/qbpharma/deployctl/internal/msg"
)

var (
	configureUse     = "configure"
	configureShort   = "Configure your SSH credentials"
	configureLong    = `Persist locally the SSH credentials 'deployctl remote' logs in to your server with`
	configureExample = "deployctl configure"
	cliUser          = ""
	cliKeyFile       = ""
)

// Command creates the `configure` command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     configureUse,
		Short:   configureShort,
		Long:    configureLong,
		Example: configureExample,
		Run: func(cmd *cobra.Command, args []string) {
			if err := Run(); err != nil {
				log.Err(err).Msg("failed to execute configure command")
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVarP(&cliUser, "user", "u", "", "the SSH user on your server")
	cmd.Flags().StringVarP(&cliKeyFile, "key", "k", "", "path to the SSH private key")

	cmd.AddCommand(ListCommand())
	return cmd
}

// answers holds the responses of the interactive configuration.
type answers struct {
	User       string `survey:"user"`
	KeyFile    string `survey:"keyFile"`
	Passphrase string `survey:"passphrase"`
	Password   string `survey:"password"`
}

// interactiveConfiguration expect user to manually type-in its credentials
func interactiveConfiguration() (credentials.Credentials, error) {
	creds := credentials.Get()

	println("") // visual paragraph break
	qs := []*survey.Question{
		{
			Name: "user",
			Prompt: &survey.Input{
				Message: "SSH user",
				Default: creds.User,
			},
			Validate: validateUser,
		},
		{
			Name: "keyFile",
			Prompt: &survey.Input{
				Message: "Private key file (leave empty to use a password)",
				Default: creds.KeyFile,
			},
			Validate: validateKeyFile,
		},
		{
			Name: "passphrase",
			Prompt: &survey.Password{
				Message: "Key passphrase (leave empty if the key is not encrypted)",
			},
		},
		{
			Name: "password",
			Prompt: &survey.Password{
				Message: "Password (leave empty to use the key only)",
			},
		},
	}

	var a answers
	if err := survey.Ask(qs, &a); err != nil {
		return creds, err
	}
	println() // visual paragraph break

	return credentials.Credentials{
		User:       strings.TrimSpace(a.User),
		KeyFile:    strings.TrimSpace(a.KeyFile),
		Passphrase: a.Passphrase,
		Password:   a.Password,
	}, nil
}

func validateUser(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return errors.New("invalid user")
	}
	if strings.TrimSpace(str) == "" {
		return errors.New(msg.EmptyUser)
	}
	return nil
}

func validateKeyFile(val interface{}) error {
	str, ok := val.(string)
	if !ok {
		return errors.New("invalid key file")
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	if _, err := os.Stat(expandHome(str)); err != nil {
		return fmt.Errorf(msg.InvalidKeyFile, str)
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// Run starts the configure command
func Run() error {
	var creds credentials.Credentials
	var err error

	if cliUser == "" && cliKeyFile == "" {
		creds, err = interactiveConfiguration()
	} else {
		if err := validateUser(cliUser); err != nil {
			return err
		}
		if err := validateKeyFile(cliKeyFile); err != nil {
			return err
		}
		creds = credentials.Credentials{
			User:    cliUser,
			KeyFile: cliKeyFile,
		}
	}
	if err != nil {
		return err
	}

	if !creds.IsSet() {
		log.Error().Msg("Neither a key file nor a password was provided. The credentials will NOT be saved.")
		return errors.New(msg.EmptyCredentials)
	}
	if err := credentials.ToFile(creds); err != nil {
		return fmt.Errorf("unable to save credentials: %s", err)
	}
	println("You're all set!")
	return nil
}
