package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	source := "Environment variables($DEPLOYCTL_SSH_USER, $DEPLOYCTL_SSH_PASSWORD, $DEPLOYCTL_SSH_KEY, $DEPLOYCTL_SSH_PASSPHRASE)"
	tests := []struct {
		name       string
		beforeTest func(t *testing.T)
		want       Credentials
	}{
		{
			name: "env vars exist",
			beforeTest: func(t *testing.T) {
				t.Setenv("DEPLOYCTL_SSH_USER", "deploy")
				t.Setenv("DEPLOYCTL_SSH_PASSWORD", "")
				t.Setenv("DEPLOYCTL_SSH_KEY", "/home/deploy/.ssh/id_ed25519")
				t.Setenv("DEPLOYCTL_SSH_PASSPHRASE", "open sesame")
			},
			want: Credentials{
				User:       "deploy",
				KeyFile:    "/home/deploy/.ssh/id_ed25519",
				Passphrase: "open sesame",
				Source:     source,
			},
		},
		{
			name: "env vars don't exist",
			beforeTest: func(t *testing.T) {
				t.Setenv("DEPLOYCTL_SSH_USER", "")
				t.Setenv("DEPLOYCTL_SSH_PASSWORD", "")
				t.Setenv("DEPLOYCTL_SSH_KEY", "")
				t.Setenv("DEPLOYCTL_SSH_PASSPHRASE", "")
			},
			want: Credentials{Source: source},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.beforeTest(t)
			if got := FromEnv(); !cmp.Equal(got, tt.want) {
				t.Errorf("FromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCredentials_IsSet(t *testing.T) {
	tests := []struct {
		name      string
		creds     Credentials
		wantSet   bool
		wantEmpty bool
	}{
		{name: "password", creds: Credentials{User: "root", Password: "secret"}, wantSet: true},
		{name: "key file", creds: Credentials{KeyFile: "id_rsa"}, wantSet: true},
		{name: "user only", creds: Credentials{User: "root"}},
		{name: "everything is missing", creds: Credentials{}, wantEmpty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSet, tt.creds.IsSet())
			assert.Equal(t, tt.wantEmpty, tt.creds.IsEmpty())
		})
	}
}

func TestFromFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name       string
		path       string
		beforeTest func()
		want       Credentials
	}{
		{
			name: "creds exist",
			path: filepath.Join(tempDir, "nested", "credilicious.yml"),
			beforeTest: func() {
				c := Credentials{User: "deploy", KeyFile: "/keys/id_ed25519", Source: "ignored"}
				if err := toFile(c, filepath.Join(tempDir, "nested", "credilicious.yml")); err != nil {
					t.Errorf("Failed to create credentials file: %v", err)
				}
			},
			want: Credentials{
				User:    "deploy",
				KeyFile: "/keys/id_ed25519",
				Source:  "Credentials file(" + filepath.Join(tempDir, "nested", "credilicious.yml") + ")",
			},
		},
		{
			name:       "creds don't exist",
			path:       filepath.Join(tempDir, "you-shall-not-find-me.yml"),
			beforeTest: func() {},
			want:       Credentials{},
		},
		{
			name: "creds are malformed",
			path: filepath.Join(tempDir, "broken.yml"),
			beforeTest: func() {
				_ = os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte("user: [deploy"), 0600)
			},
			want: Credentials{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.beforeTest()
			if got := fromFile(tt.path); !cmp.Equal(got, tt.want) {
				t.Errorf("fromFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToFile_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds", "credentials.yml")
	assert.NoError(t, toFile(Credentials{User: "deploy", Password: "secret"}, path))

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	b, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.NotContains(t, string(b), "source")
}

func Test_defaultFilepath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Errorf("Unable to determine home directory: %v", err)
	}

	if got := DefaultCredsPath; got != filepath.Join(home, ".deployctl", "credentials.yml") {
		t.Errorf("defaultFilepath() = %v, want %v", got, filepath.Join(home, ".deployctl", "credentials.yml"))
	}
}
