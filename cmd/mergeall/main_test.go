package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/wahlandcase/mergeall/internal/git/gittest"
	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config at an empty directory
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("NO_COLOR", "1")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// publishedRepo has origin/feature/a (clean) and origin/feature/b (conflicting)
func publishedRepo(t *testing.T) *gittest.Repo {
	t.Helper()
	r := gittest.New(t)
	r.Commit("init", map[string]string{"readme.md": "base\n", "config.lock": "secret\n"})
	r.AddRemote("origin")

	r.Checkout("feature/a", true)
	r.Commit("add a", map[string]string{"a.txt": "a\n"})
	r.Checkout("main", false)

	r.Checkout("feature/b", true)
	r.Commit("rewrite", map[string]string{"readme.md": "theirs\n", "config.lock": "leaked\n"})
	r.Checkout("main", false)
	r.Commit("ours", map[string]string{"readme.md": "ours\n"})

	for _, b := range []string{"main", "feature/a", "feature/b"} {
		r.PublishBranch("origin", b)
	}
	r.SetRemoteHead("origin", "main")
	return r
}

func TestConfigInitAndShow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "mergeall.toml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "show", "--config", path, "-C", t.TempDir(), "--remote", "upstream", "-x", "^wip/")
	require.NoError(t, err)
	assert.Contains(t, out, "upstream")
	assert.Contains(t, out, "vite.config.ts")
	assert.Contains(t, out, "^wip/")
}

func TestList(t *testing.T) {
	isolate(t)
	r := publishedRepo(t)

	out, err := execute(t, "list", "-C", r.Dir, "-p", "config.lock", "-x", "^feature/b$")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 branches to merge into main.")
	assert.Contains(t, out, "origin/feature/a")
	assert.NotContains(t, out, "origin/feature/b")
	assert.Contains(t, out, "Protected paths: [config.lock]")
}

func TestRun_NotARepository(t *testing.T) {
	isolate(t)

	_, err := execute(t, "-C", t.TempDir(), "--dry-run")
	assert.ErrorContains(t, err, "not a git repository")
}

func TestRun_DryRun(t *testing.T) {
	gittest.RequireGitBinary(t)
	isolate(t)
	r := publishedRepo(t)
	head := r.Head()

	out, err := execute(t, "-C", r.Dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 branches to merge into main.")
	assert.Contains(t, out, "Dry run: no branches were merged.")
	assert.Equal(t, head, r.Head())
}

func TestRun_DirtyWorktree(t *testing.T) {
	gittest.RequireGitBinary(t)
	isolate(t)
	r := publishedRepo(t)
	r.Write("scratch.txt", "wip")

	_, err := execute(t, "-C", r.Dir, "--yes")
	assert.ErrorIs(t, err, merge.ErrDirtyWorktree)
}

func TestRun_MergesAndReports(t *testing.T) {
	gittest.RequireGitBinary(t)
	isolate(t)
	r := publishedRepo(t)
	reportPath := filepath.Join(t.TempDir(), "run.yaml")

	out, err := execute(t, "-C", r.Dir, "--yes", "-p", "config.lock", "--report", reportPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Successfully merged origin/feature/a")
	assert.Contains(t, out, "Successfully resolved and merged origin/feature/b")
	assert.Contains(t, out, "Successful merges: 2")
	assert.Contains(t, out, "Failed merges: 0")

	assert.Equal(t, "theirs\n", r.Read("readme.md"))
	assert.Equal(t, "secret\n", r.Read("config.lock"))

	rep, err := report.Load(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "main", rep.Target)
	assert.Equal(t, []string{"config.lock"}, rep.ProtectedPaths)
	assert.Equal(t, report.Summary{Succeeded: 2, Resolved: 1}, rep.Summary)
	assert.Empty(t, rep.Drifted)
	require.Len(t, rep.Branches, 2)
	assert.Equal(t, "resolved", rep.Branches[1].Status)
}

func TestRun_FailureExitsNonZero(t *testing.T) {
	gittest.RequireGitBinary(t)
	isolate(t)
	r := publishedRepo(t)

	// A pre-commit hook that always fails breaks the resolution commit
	hook := filepath.Join(r.Dir, ".git", "hooks", "pre-commit")
	require.NoError(t, os.MkdirAll(filepath.Dir(hook), 0755))
	require.NoError(t, os.WriteFile(hook, []byte("#!/bin/sh\nexit 1\n"), 0755))

	out, err := execute(t, "-C", r.Dir, "--yes", "-p", "config.lock")
	assert.ErrorIs(t, err, merge.ErrBranchesFailed)

	assert.Contains(t, out, "Successfully merged origin/feature/a")
	assert.Contains(t, out, "Failed to merge origin/feature/b")
	assert.Contains(t, out, "Failed merges: 1")
	assert.Equal(t, "ours\n", r.Read("readme.md"))
}

func TestRun_TargetNotCheckedOut(t *testing.T) {
	isolate(t)
	r := publishedRepo(t)
	head := r.Head()

	for _, args := range [][]string{
		{"-C", r.Dir, "--target", "feature/a", "--yes"},
		{"-C", r.Dir, "--target", "feature/a", "--dry-run"},
	} {
		out, err := execute(t, args...)

		var notCheckedOut *merge.TargetNotCheckedOutError
		require.ErrorAs(t, err, &notCheckedOut)
		assert.Equal(t, "feature/a", notCheckedOut.Target)
		assert.Equal(t, "main", notCheckedOut.Current)
		assert.NotContains(t, out, "origin/main")
	}

	assert.Equal(t, head, r.Head())
	ref, err := r.Repo.Head()
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/main", ref.Name().String())
}

func TestRun_TargetMatchesCheckedOutBranch(t *testing.T) {
	isolate(t)
	r := publishedRepo(t)

	out, err := execute(t, "-C", r.Dir, "--target", "main", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 branches to merge into main.")
}

func TestRun_DetachedHead(t *testing.T) {
	isolate(t)
	r := publishedRepo(t)
	r.Detach()

	_, err := execute(t, "-C", r.Dir, "--dry-run")

	var notCheckedOut *merge.TargetNotCheckedOutError
	require.ErrorAs(t, err, &notCheckedOut)
	assert.Empty(t, notCheckedOut.Current)
	assert.ErrorContains(t, err, "HEAD is detached")
}
