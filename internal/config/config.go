package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v2"

	"github.com/qbpharma/deployctl/internal/msg"
	"github.com/qbpharma/deployctl/internal/viper"
)

// TypeDef represents the type definition of the config.
type TypeDef struct {
	APIVersion string `yaml:"apiVersion,omitempty"`
	Kind       string `yaml:"kind,omitempty"`
}

// When represents a conditional status for when notifications should be sent.
type When string

// These conditions indicate when notifications are to be sent.
const (
	WhenFail   When = "fail"
	WhenPass   When = "pass"
	WhenNever  When = "never"
	WhenAlways When = "always"
)

// IsNow returns true if When fulfills its own condition of 'passed'.
func (w When) IsNow(passed bool) bool {
	if w == WhenAlways {
		return true
	}
	if w == WhenFail && !passed {
		return true
	}
	if w == WhenPass && passed {
		return true
	}

	return false
}

// Notifications represents the deployment notifications configuration.
type Notifications struct {
	Slack Slack `yaml:"slack,omitempty" json:"slack"`
}

// Slack represents slack configuration.
type Slack struct {
	Channels []string `yaml:"channels,omitempty" json:"channels"`
	Send     When     `yaml:"send,omitempty" json:"send"`
}

func readYaml(cfgFilePath string) ([]byte, error) {
	if cfgFilePath == "" {
		return nil, errors.New(msg.MissingConfigFile)
	}

	fp, err := filepath.Abs(cfgFilePath)
	if err != nil {
		return nil, err
	}

	return os.ReadFile(fp)
}

// Describe returns a description of the given config that is cfgPath.
func Describe(cfgPath string) (TypeDef, error) {
	var d TypeDef

	if cfgPath == "" {
		return TypeDef{}, nil
	}

	yamlFile, err := readYaml(cfgPath)
	if err != nil {
		return TypeDef{}, fmt.Errorf("failed to locate deploy configuration: %v", err)
	}

	if err = yaml.Unmarshal(yamlFile, &d); err != nil {
		return TypeDef{}, fmt.Errorf("failed to parse deploy configuration: %v", err)
	}

	// Sanity check.
	if d.APIVersion == "" {
		return TypeDef{}, errors.New(msg.InvalidDeployConfig)
	}

	// Normalize certain values for ease of use.
	d.Kind = strings.ToLower(d.Kind)

	return d, nil
}

// Unmarshal parses the file cfgPath into the given project struct.
// Values bound to viper through flags take precedence over the file. An empty cfgPath only applies the flags.
func Unmarshal(cfgPath string, project interface{}) error {
	if cfgPath != "" {
		viper.SetConfigFile(cfgPath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to locate deploy config: %v", err)
		}
	}

	return viper.Unmarshal(&project, func(decodeCfg *mapstructure.DecoderConfig) {
		decodeCfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			func(in reflect.Kind, out reflect.Kind, v interface{}) (interface{}, error) {
				return expandEnv(v), nil
			},
		)
	})
}

// expandEnv replaces $VAR and ${VAR} references in the string values of v, descending into slices and maps.
func expandEnv(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return os.ExpandEnv(val)
	case []string:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, os.ExpandEnv(item))
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, item := range val {
			out = append(out, expandEnv(item))
		}
		return out
	case map[string]string:
		for key, item := range val {
			val[key] = os.ExpandEnv(item)
		}
		return val
	case map[string]interface{}:
		for key, item := range val {
			val[key] = expandEnv(item)
		}
		return val
	case map[interface{}]interface{}:
		for key, item := range val {
			val[key] = expandEnv(item)
		}
		return val
	}
	return v
}

// ValidateSchema validates the config file against the JSON Schema identified by schemaName, whose content is schema.
// Issues are printed to w and their number is returned. The validation is advisory only: a file that can't be read or
// parsed, or a schema that doesn't compile, yields no issues since loading the config reports those problems anyway.
func ValidateSchema(w io.Writer, cfgFile, schemaName, schema string) int {
	err := validateSchema(cfgFile, schemaName, schema)
	if err == nil {
		return 0
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		log.Debug().Err(err).Str("config", cfgFile).Msg("Skipped schema validation.")
		return 0
	}

	issues := findRootCauses(verr)
	renderSchemaValidationIssues(w, cfgFile, issues)
	return len(issues)
}

func validateSchema(cfgFile, schemaName, schema string) error {
	b, err := os.ReadFile(cfgFile)
	if err != nil {
		return err
	}

	var doc interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc, err = normalizeKeys(doc); err != nil {
		return err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, strings.NewReader(schema)); err != nil {
		return err
	}
	s, err := compiler.Compile(schemaName)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

func renderSchemaValidationIssues(w io.Writer, cfgFile string, issues []*jsonschema.ValidationError) {
	red := color.New(color.FgRed)

	noun := "issue"
	if len(issues) > 1 {
		noun = "issues"
	}
	_, _ = fmt.Fprintln(w)
	_, _ = red.Fprintf(w, "Found %d schema validation %s in %s:\n", len(issues), noun, cfgFile)
	for _, i := range issues {
		if i.InstanceLocation != "" {
			_, _ = red.Fprintf(w, "- %s at %s\n", i.Message, i.InstanceLocation)
			continue
		}
		_, _ = red.Fprintf(w, "- %s\n", i.Message)
	}
	_, _ = fmt.Fprintln(w)
}

func findRootCauses(validationError *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if validationError == nil {
		return []*jsonschema.ValidationError{}
	}

	if len(validationError.Causes) == 0 {
		return []*jsonschema.ValidationError{validationError}
	}

	var errors []*jsonschema.ValidationError
	for _, cause := range validationError.Causes {
		errors = append(errors, findRootCauses(cause)...)
	}
	return errors
}

// normalizeKeys converts the map[interface{}]interface{} values produced by yaml.v2 into map[string]interface{}, which
// is what the schema validator understands.
func normalizeKeys(val interface{}) (interface{}, error) {
	switch val := val.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported non-string key %v", k)
			}
			nv, err := normalizeKeys(v)
			if err != nil {
				return nil, err
			}
			m[key] = nv
		}
		return m, nil
	case []interface{}:
		l := make([]interface{}, len(val))
		for i, v := range val {
			nv, err := normalizeKeys(v)
			if err != nil {
				return nil, err
			}
			l[i] = nv
		}
		return l, nil
	default:
		return val, nil
	}
}
