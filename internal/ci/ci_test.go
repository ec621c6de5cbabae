package ci

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearProviders hides any CI environment the tests themselves run in.
func clearProviders(t *testing.T) {
	t.Helper()
	for _, p := range Providers {
		t.Setenv(p.Envar, "")
		require.NoError(t, os.Unsetenv(p.Envar))
	}
}

func TestGetProvider(t *testing.T) {
	clearProviders(t)
	assert.Equal(t, None, GetProvider())

	t.Setenv("CI_PIPELINE_ID", "42")
	assert.Equal(t, GitLab, GetProvider())
}

func TestDetect_GitHub(t *testing.T) {
	clearProviders(t)
	t.Setenv("GITHUB_RUN_ID", "7")
	t.Setenv("GITHUB_SERVER_URL", "https://github.com")
	t.Setenv("GITHUB_REPOSITORY", "qbpharma/shop")
	t.Setenv("GITHUB_REF_NAME", "main")
	t.Setenv("GITHUB_SHA", "1a2b3c4d5e6f")
	t.Setenv("GITHUB_ACTOR", "octocat")

	got := Detect(t.TempDir())
	assert.Equal(t, CI{
		Provider:  GitHub,
		OriginURL: "https://github.com/qbpharma/shop/actions/runs/7",
		Repo:      "qbpharma/shop",
		RefName:   "main",
		SHA:       "1a2b3c4d5e6f",
		User:      "octocat",
	}, got)
	assert.Equal(t, "GitHub main@1a2b3c4 by octocat", got.String())
}

func TestDetect_Git(t *testing.T) {
	clearProviders(t)
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@example.test:qbpharma/shop.git"}})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dist", "index.html"), []byte("<html></html>"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("dist/index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("build", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.test", When: time.Now()},
	})
	require.NoError(t, err)

	got := Detect(filepath.Join(dir, "dist"))
	assert.Equal(t, Local, got.Provider)
	assert.Equal(t, hash.String(), got.SHA)
	assert.Equal(t, "master", got.RefName)
	assert.Equal(t, "git@example.test:qbpharma/shop.git", got.Repo)
}

func TestDetect_Nothing(t *testing.T) {
	clearProviders(t)
	got := Detect(t.TempDir())
	assert.Equal(t, CI{}, got)
	assert.Equal(t, "", got.String())
}
