package merge

import (
	"context"
	"fmt"
	"testing"

	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/git/gittest"
	"github.com/wahlandcase/mergeall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_MergeAllRemoteBranches(t *testing.T) {
	gittest.RequireGitBinary(t)
	r := gittest.New(t)
	r.Commit("init", map[string]string{"readme.md": "base\n", "config.lock": "secret\n"})
	r.AddRemote("origin")

	r.Checkout("feature/a", true)
	r.Commit("add a", map[string]string{"a.txt": "a\n"})
	r.Checkout("main", false)

	r.Checkout("feature/b", true)
	r.Commit("rewrite", map[string]string{"readme.md": "theirs\n", "config.lock": "theirs-secret\n"})
	r.Checkout("main", false)
	r.Commit("ours", map[string]string{"readme.md": "ours\n", "config.lock": "secret-v2\n"})

	for _, b := range []string{"main", "feature/a", "feature/b"} {
		r.PublishBranch("origin", b)
	}
	r.SetRemoteHead("origin", "main")

	ctx := context.Background()
	pp := protected(t, "config.lock")

	branches, err := NewSource(r.Dir, "main", "origin", nil).ListIntegrationCandidates(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.Branch{branch("feature/a"), branch("feature/b")}, branches)

	snap, err := TakeSnapshot(r.Dir, pp)
	require.NoError(t, err)

	cli := git.NewCLI(r.Dir, nil)
	o := NewOrchestrator(cli, Options{Target: "main", Protected: pp})
	summary := o.Run(ctx, branches)

	assert.Equal(t, models.RunSummary{Succeeded: 2, Resolved: 1}, summary)
	assert.Equal(t, "theirs\n", r.Read("readme.md"))
	assert.Equal(t, "secret-v2\n", r.Read("config.lock"))
	assert.Equal(t, "a\n", r.Read("a.txt"))

	drifted, err := snap.Drifted()
	require.NoError(t, err)
	assert.Empty(t, drifted)

	clean, err := cli.IsClean(ctx)
	require.NoError(t, err)
	assert.True(t, clean)

	// A second run finds nothing new to merge
	again := NewOrchestrator(cli, Options{Target: "main", Protected: pp}).Run(ctx, branches)
	assert.Equal(t, models.RunSummary{Succeeded: 2}, again)
}

func TestIntegration_FailedBranchIsRolledBack(t *testing.T) {
	gittest.RequireGitBinary(t)
	r := gittest.New(t)
	r.Commit("init", map[string]string{"readme.md": "base\n"})
	pre := r.Head()

	cli := git.NewCLI(r.Dir, nil)
	ctx := context.Background()

	o := NewOrchestrator(cli, Options{Target: "main"})
	summary := o.Run(ctx, []models.Branch{branch("does-not-exist")})

	assert.Equal(t, models.RunSummary{Failed: 1}, summary)
	assert.Equal(t, pre, r.Head())

	inProgress, err := cli.MergeInProgress(ctx)
	require.NoError(t, err)
	assert.False(t, inProgress)
}

// conflictingRepo builds a repository where origin/feature/b conflicts with main
// on a regular file and a protected file, and also deletes and adds files
func conflictingRepo(t *testing.T) *gittest.Repo {
	t.Helper()
	r := gittest.New(t)
	r.Commit("init", map[string]string{
		"readme.md":   "base\n",
		"config.lock": "secret\n",
		"old.txt":     "old\n",
	})
	r.AddRemote("origin")

	r.Checkout("feature/b", true)
	r.Commit("rewrite", map[string]string{
		"readme.md":   "theirs\n",
		"config.lock": "theirs-secret\n",
		"added.txt":   "added\n",
	})
	r.Delete("drop old", "old.txt")
	r.Checkout("main", false)
	r.Commit("ours", map[string]string{
		"readme.md":   "ours\n",
		"config.lock": "secret-v2\n",
		"old.txt":     "ours-old\n",
	})

	r.PublishBranch("origin", "feature/b")
	return r
}

func TestIntegration_ResolutionIsDeterministic(t *testing.T) {
	gittest.RequireGitBinary(t)
	ctx := context.Background()
	pp := protected(t, "config.lock")

	var trees []string
	var contents []map[string]string
	for range 2 {
		r := conflictingRepo(t)
		o := NewOrchestrator(git.NewCLI(r.Dir, nil), Options{Target: "main", Protected: pp})
		summary := o.Run(ctx, []models.Branch{branch("feature/b")})
		require.Equal(t, models.RunSummary{Succeeded: 1, Resolved: 1}, summary)

		commit, err := r.Repo.CommitObject(r.Head())
		require.NoError(t, err)
		require.Equal(t, 2, commit.NumParents())
		trees = append(trees, commit.TreeHash.String())

		files := map[string]string{}
		for _, path := range []string{"readme.md", "config.lock", "added.txt"} {
			files[path] = r.Read(path)
		}
		files["old.txt exists"] = fmt.Sprint(r.Exists("old.txt"))
		contents = append(contents, files)
	}

	assert.Equal(t, trees[0], trees[1])
	assert.Equal(t, contents[0], contents[1])
	assert.Equal(t, map[string]string{
		"readme.md":      "theirs\n",
		"config.lock":    "secret-v2\n",
		"added.txt":      "added\n",
		"old.txt exists": "false",
	}, contents[0])
}
