// Package gittest builds throwaway repositories for tests with go-git, so
// fixtures do not depend on the git executable or the user's git config.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Repo is a non-bare repository in a temp dir with "main" checked out
type Repo struct {
	t    *testing.T
	Dir  string
	Repo *git.Repository
}

// New initializes a repository whose initial branch is main
func New(t *testing.T) *Repo {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	return &Repo{t: t, Dir: dir, Repo: repo}
}

// RequireGitBinary skips the test when the git executable is unavailable and
// isolates git from the user's configuration
func RequireGitBinary(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
}

func (r *Repo) worktree() *git.Worktree {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)
	return wt
}

// Write writes a file in the working tree without staging it
func (r *Repo) Write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(path))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0644))
}

// Read returns a working tree file's content
func (r *Repo) Read(path string) string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Dir, filepath.FromSlash(path)))
	require.NoError(r.t, err)
	return string(data)
}

// Exists reports whether a working tree file exists
func (r *Repo) Exists(path string) bool {
	_, err := os.Stat(filepath.Join(r.Dir, filepath.FromSlash(path)))
	return err == nil
}

// Commit writes the given files and commits them on the current branch
func (r *Repo) Commit(message string, files map[string]string) plumbing.Hash {
	r.t.Helper()
	wt := r.worktree()
	for path, content := range files {
		r.Write(path, content)
		_, err := wt.Add(path)
		require.NoError(r.t, err)
	}
	return r.commit(wt, message)
}

// Delete removes a file and commits the removal on the current branch
func (r *Repo) Delete(message, path string) plumbing.Hash {
	r.t.Helper()
	wt := r.worktree()
	_, err := wt.Remove(path)
	require.NoError(r.t, err)
	return r.commit(wt, message)
}

func (r *Repo) commit(wt *git.Worktree, message string) plumbing.Hash {
	r.t.Helper()
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
	return hash
}

// Checkout switches to branch, creating it from HEAD when create is true
func (r *Repo) Checkout(branch string, create bool) {
	r.t.Helper()
	err := r.worktree().Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
	require.NoError(r.t, err)
}

// Head returns the commit HEAD points at
func (r *Repo) Head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.Repo.Head()
	require.NoError(r.t, err)
	return ref.Hash()
}

// AddRemote registers a remote without fetching from it
func (r *Repo) AddRemote(name string) {
	r.t.Helper()
	_, err := r.Repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: name,
		URLs: []string{"https://example.invalid/" + name + ".git"},
	})
	require.NoError(r.t, err)
}

// SetRemoteBranch points refs/remotes/<remote>/<name> at hash
func (r *Repo) SetRemoteBranch(remote, name string, hash plumbing.Hash) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, name), hash)
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
}

// SetRemoteHead creates the symbolic refs/remotes/<remote>/HEAD pointing at target
func (r *Repo) SetRemoteHead(remote, target string) {
	r.t.Helper()
	ref := plumbing.NewSymbolicReference(
		plumbing.NewRemoteReferenceName(remote, "HEAD"),
		plumbing.NewRemoteReferenceName(remote, target),
	)
	require.NoError(r.t, r.Repo.Storer.SetReference(ref))
}

// PublishBranch mirrors a local branch as a remote-tracking branch
func (r *Repo) PublishBranch(remote, branch string) {
	r.t.Helper()
	ref, err := r.Repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	require.NoError(r.t, err)
	r.SetRemoteBranch(remote, branch, ref.Hash())
}

// Detach checks out the current commit with a detached HEAD
func (r *Repo) Detach() {
	r.t.Helper()
	err := r.worktree().Checkout(&git.CheckoutOptions{Hash: r.Head()})
	require.NoError(r.t, err)
}
