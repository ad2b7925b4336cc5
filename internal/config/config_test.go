package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "origin", cfg.Merge.Remote)
	assert.Empty(t, cfg.Merge.Target)
	assert.Equal(t, []string{"vite.config.ts"}, cfg.Merge.ProtectedPaths)
	assert.Equal(t, DefaultCommitMessage, cfg.Merge.CommitMessage)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mergeall.toml")
	writeFile(t, path, `
[merge]
target = "develop"
remote = ""
protected_paths = ["config.lock", "secrets/app.env"]
exclude = ["^wip/", "^dependabot/"]
fetch = true

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.Merge.Target)
	assert.Empty(t, cfg.Merge.Remote)
	assert.Equal(t, []string{"config.lock", "secrets/app.env"}, cfg.Merge.ProtectedPaths)
	assert.True(t, cfg.Merge.Fetch)
	assert.False(t, cfg.Merge.AllowDirty)
	assert.Equal(t, DefaultCommitMessage, cfg.Merge.CommitMessage)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Len(t, cfg.ExcludeRegexes(), 2)
	assert.True(t, cfg.ExcludeRegexes()[0].MatchString("wip/spike"))
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_MissingUserConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Merge, cfg.Merge)
}

func TestLoad_InvalidExcludePattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mergeall.toml")
	writeFile(t, path, "[merge]\nexclude = [\"(unclosed\"]\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge.exclude")
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mergeall.toml")
	writeFile(t, path, "[merge\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyRepo(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, filepath.Join(repo, RepoConfigName), `
[merge]
protected_paths = ["config.lock"]
commit_message = "Integrate {branch} -> {target}"
`)

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyRepo(repo))

	assert.Equal(t, []string{"config.lock"}, cfg.Merge.ProtectedPaths)
	assert.Equal(t, "origin", cfg.Merge.Remote)
	assert.Equal(t, "Integrate origin/feature/a -> main", cfg.CommitMessage("origin/feature/a", "main"))
}

func TestApplyRepo_NoFile(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyRepo(t.TempDir()))
	assert.Equal(t, DefaultConfig().Merge, cfg.Merge)
}

func TestCommitMessage_Default(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t,
		"Merge origin/feature/b into main with conflict resolution",
		cfg.CommitMessage("origin/feature/b", "main"),
	)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mergeall.toml")
	cfg := DefaultConfig()
	cfg.Merge.Target = "release"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "release", loaded.Merge.Target)
	assert.Equal(t, cfg.Merge.ProtectedPaths, loaded.Merge.ProtectedPaths)
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs/run.log"), expandTilde("~/logs/run.log"))
	assert.Equal(t, "/abs/path", expandTilde("/abs/path"))
}
