package flags

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/qbpharma/deployctl/internal/viper"
)

// SnakeCharmer because Cobra and Viper. Get it?
// It declares flags and remembers the config field each of them sets, so that flags, environment variables and the
// config file all end up in the same viper key.
//
// Example:
//
//	sc := flags.NewSnakeCharmer(cmd.Flags())
//	sc.String("server", "server::address", "", "Address of the target server")
//	sc.Env("server::address", "DEPLOYCTL_SERVER")
//	err := sc.BindAll()
type SnakeCharmer struct {
	Fset *pflag.FlagSet
	// Fmap maps field names (key) to flags (value).
	Fmap map[string]*pflag.Flag
	// Emap maps field names (key) to environment variables (value).
	Emap map[string]string
}

// NewSnakeCharmer returns a SnakeCharmer that declares its flags on fs.
func NewSnakeCharmer(fs *pflag.FlagSet) *SnakeCharmer {
	return &SnakeCharmer{
		Fset: fs,
		Fmap: map[string]*pflag.Flag{},
		Emap: map[string]string{},
	}
}

// BindAll binds all previously added flags and environment variables to their respective fields.
func (s *SnakeCharmer) BindAll() error {
	for fieldName, flag := range s.Fmap {
		if err := viper.BindPFlag(fieldName, flag); err != nil {
			return fmt.Errorf("failed to bind flag '%s' to '%s': %w", flag.Name, fieldName, err)
		}
	}
	for fieldName, env := range s.Emap {
		if err := viper.BindEnv(fieldName, env); err != nil {
			return fmt.Errorf("failed to bind env '%s' to '%s': %w", env, fieldName, err)
		}
	}
	return nil
}

// Env reads fieldName from the environment variable env, unless the matching flag is set.
func (s *SnakeCharmer) Env(fieldName, env string) {
	s.Emap[fieldName] = env
}

// Bool defines a bool flag with specified flagName, default value, usage string and then binds it to fieldName.
func (s *SnakeCharmer) Bool(flagName, fieldName string, value bool, usage string) {
	s.Fset.Bool(flagName, value, usage)
	s.addBind(flagName, fieldName)
}

// Duration defines a duration flag with specified flagName, default value, usage string and then binds it to fieldName.
func (s *SnakeCharmer) Duration(flagName string, fieldName string, value time.Duration, usage string) {
	s.Fset.Duration(flagName, value, usage)
	s.addBind(flagName, fieldName)
}

// Int defines an int flag with specified flagName, default value, usage string and then binds it to fieldName.
func (s *SnakeCharmer) Int(flagName, fieldName string, value int, usage string) {
	s.Fset.Int(flagName, value, usage)
	s.addBind(flagName, fieldName)
}

// String defines a string flag with specified flagName, default value, usage string and then binds it to fieldName.
func (s *SnakeCharmer) String(flagName, fieldName, value, usage string) {
	s.Fset.String(flagName, value, usage)
	s.addBind(flagName, fieldName)
}

// StringSlice defines a []string flag. Comma separated values and repeated flags are both accepted.
func (s *SnakeCharmer) StringSlice(flagName, fieldName string, value []string, usage string) {
	s.Fset.StringSlice(flagName, value, usage)
	s.addBind(flagName, fieldName)
}

func (s *SnakeCharmer) addBind(flagName, fieldName string) {
	s.Fmap[fieldName] = s.Fset.Lookup(flagName)
}
