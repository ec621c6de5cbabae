package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"gotest.tools/v3/fs"
)

func TestConfig_ExpandEnv(t *testing.T) {
	envMap := map[string]string{
		"BUILD_DIR":                   "./frontend/dist",
		"SERVER_ADDRESS":              "203.0.113.10",
		"SITE_NAME":                   "qb-pharma",
		"UPLOAD_TIMEOUT":              "5m",
		"EXCLUDE1":                    "**/*.map",
		"NOTIFICATION_SLACK_CHANNEL1": "channel1",
		"NOTIFICATION_SLACK_CHANNEL2": "channel2",
		"NOTIFICATION_SLACK_SEND":     "always",
	}

	for key, val := range envMap {
		t.Setenv(key, val)
	}

	testObj := map[string]interface{}{
		"buildDir": "$BUILD_DIR",
		"archive": map[string]interface{}{
			"exclude": []interface{}{"$EXCLUDE1"},
		},
		"server": map[string]interface{}{
			"address": "$SERVER_ADDRESS",
			"port":    22,
		},
		"site": map[string]interface{}{
			"name":    "${SITE_NAME}",
			"webRoot": "/var/www/${SITE_NAME}",
		},
		"upload": map[string]interface{}{
			"timeout": "$UPLOAD_TIMEOUT",
		},
		"notifications": map[string]interface{}{
			"slack": map[string]interface{}{
				"channels": []interface{}{"$NOTIFICATION_SLACK_CHANNEL1", "$NOTIFICATION_SLACK_CHANNEL2"},
				"send":     "$NOTIFICATION_SLACK_SEND",
			},
		},
	}

	expectObj := map[string]interface{}{
		"buildDir": "./frontend/dist",
		"archive": map[string]interface{}{
			"exclude": []interface{}{"**/*.map"},
		},
		"server": map[string]interface{}{
			"address": "203.0.113.10",
			"port":    22,
		},
		"site": map[string]interface{}{
			"name":    "qb-pharma",
			"webRoot": "/var/www/qb-pharma",
		},
		"upload": map[string]interface{}{
			"timeout": "5m",
		},
		"notifications": map[string]interface{}{
			"slack": map[string]interface{}{
				"channels": []interface{}{"channel1", "channel2"},
				"send":     "always",
			},
		},
	}

	testCases := []struct {
		name     string
		input    map[string]interface{}
		expected map[string]interface{}
	}{
		{
			name:     "Test deploy config",
			input:    testObj,
			expected: expectObj,
		},
		{
			name:     "Test empty config",
			input:    map[string]interface{}{},
			expected: map[string]interface{}{},
		},
		{
			name:     "Test nil",
			input:    nil,
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := expandEnv(tc.input)
			assert.False(t, strings.Contains(fmt.Sprint(result), "$"))
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestWhen_IsNow(t *testing.T) {
	tests := []struct {
		name   string
		w      When
		passed bool
		want   bool
	}{
		{name: "always on pass", w: WhenAlways, passed: true, want: true},
		{name: "always on fail", w: WhenAlways, passed: false, want: true},
		{name: "fail on fail", w: WhenFail, passed: false, want: true},
		{name: "fail on pass", w: WhenFail, passed: true, want: false},
		{name: "pass on pass", w: WhenPass, passed: true, want: true},
		{name: "pass on fail", w: WhenPass, passed: false, want: false},
		{name: "never", w: WhenNever, passed: true, want: false},
		{name: "unset", w: "", passed: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.w.IsNow(tt.passed))
		})
	}
}

func TestDescribe(t *testing.T) {
	dir := fs.NewDir(t, "describe",
		fs.WithFile("good.yml", "apiVersion: v1alpha\nkind: Deploy\n"),
		fs.WithFile("bad.yml", "kind: deploy\n"),
		fs.WithFile("broken.yml", "kind: [deploy\n"))
	defer dir.Remove()

	d, err := Describe(dir.Join("good.yml"))
	assert.NoError(t, err)
	assert.Equal(t, TypeDef{APIVersion: "v1alpha", Kind: "deploy"}, d)

	_, err = Describe(dir.Join("bad.yml"))
	assert.Error(t, err)

	_, err = Describe(dir.Join("broken.yml"))
	assert.Error(t, err)

	_, err = Describe(dir.Join("missing.yml"))
	assert.Error(t, err)

	d, err = Describe("")
	assert.NoError(t, err)
	assert.Equal(t, TypeDef{}, d)
}

const testSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "server": {
      "type": "object",
      "properties": {
        "address": {"type": "string"},
        "port": {"type": "integer", "minimum": 1, "maximum": 65535}
      },
      "additionalProperties": false
    }
  }
}`

func TestValidateSchema(t *testing.T) {
	dir := fs.NewDir(t, "schema",
		fs.WithFile("good.yml", "server:\n  address: 203.0.113.10\n  port: 22\n"),
		fs.WithFile("bad.yml", "server:\n  address: 203.0.113.10\n  port: 0\n  user: root\n"))
	defer dir.Remove()

	assert.NoError(t, validateSchema(dir.Join("good.yml"), "test.schema.json", testSchema))

	err := validateSchema(dir.Join("bad.yml"), "test.schema.json", testSchema)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("validateSchema() error = %v, want *jsonschema.ValidationError", err)
	}
	causes := findRootCauses(verr)
	assert.NotEmpty(t, causes)
	for _, c := range causes {
		assert.Empty(t, c.Causes)
	}

	assert.Error(t, validateSchema(dir.Join("missing.yml"), "test.schema.json", testSchema))

	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	assert.Equal(t, 0, ValidateSchema(&buf, dir.Join("good.yml"), "test.schema.json", testSchema))
	assert.Empty(t, buf.String())

	n := ValidateSchema(&buf, dir.Join("bad.yml"), "test.schema.json", testSchema)
	assert.Equal(t, len(causes), n)
	assert.Contains(t, buf.String(), fmt.Sprintf("Found %d schema validation issues in %s", n, dir.Join("bad.yml")))
	assert.Contains(t, buf.String(), "at /server/port")

	buf.Reset()
	assert.Equal(t, 0, ValidateSchema(&buf, dir.Join("missing.yml"), "test.schema.json", testSchema))
	assert.Empty(t, buf.String())
}

func TestNormalizeKeys(t *testing.T) {
	got, err := normalizeKeys(map[interface{}]interface{}{
		"server": map[interface{}]interface{}{"port": 22},
		"list":   []interface{}{map[interface{}]interface{}{"a": "b"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"server": map[string]interface{}{"port": 22},
		"list":   []interface{}{map[string]interface{}{"a": "b"}},
	}, got)

	_, err = normalizeKeys(map[interface{}]interface{}{1: "one"})
	assert.Error(t, err)
}
