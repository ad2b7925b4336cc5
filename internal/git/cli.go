package git

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wahlandcase/mergeall/internal/models"
)

// MergeAttempt describes how `git merge` completed
type MergeAttempt struct {
	// Conflicted is true when git stopped with unresolved content and a merge in progress
	Conflicted bool
	// Conflicts lists the unmerged paths when Conflicted
	Conflicts []string
	// UpToDate is true when there was nothing to merge
	UpToDate bool
}

// GitError provides better context for git command failures
type GitError struct {
	Command  string
	Output   string
	ExitCode int
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}

// NotARepositoryError indicates the path is not inside a git repository
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	return "not a git repository (or any of the parent directories): " + e.Path
}

// RemoteNotFoundError indicates a configured remote does not exist
type RemoteNotFoundError struct {
	Remote string
}

func (e *RemoteNotFoundError) Error() string {
	return "remote not found: " + e.Remote
}

// CLI runs git commands in a working tree using the git executable, so merges
// use the user's git configuration, hooks and credentials
type CLI struct {
	RepoPath string
	logger   *slog.Logger
}

// NewCLI creates a CLI bound to the repository at repoPath
func NewCLI(repoPath string, logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CLI{RepoPath: repoPath, logger: logger}
}

func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.RepoPath
	// Never open an editor or prompt for credentials
	cmd.Env = append(os.Environ(), "GIT_EDITOR=true", "GIT_MERGE_AUTOEDIT=no", "GIT_TERMINAL_PROMPT=0")

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())
	c.logger.Debug("git", "args", args, "err", err)
	if err == nil {
		return output, nil
	}

	gitErr := &GitError{Command: args[0], Output: output, ExitCode: -1}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		gitErr.ExitCode = exitErr.ExitCode()
	}
	if gitErr.Output == "" {
		gitErr.Output = err.Error()
	}
	return output, gitErr
}

func exitCode(err error) int {
	var gitErr *GitError
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}
	return -1
}

// Head returns the commit HEAD points at
func (c *CLI) Head(ctx context.Context) (models.CommitInfo, error) {
	return ReadHeadCommit(c.RepoPath)
}

// IsClean reports whether the working tree has no staged, unstaged or untracked changes
func (c *CLI) IsClean(ctx context.Context) (bool, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// Fetch updates remote-tracking branches, pruning deleted ones.
// An empty remote fetches all remotes.
func (c *CLI) Fetch(ctx context.Context, remote string) error {
	args := []string{"fetch", "--prune"}
	if remote == "" {
		args = append(args, "--all")
	} else {
		args = append(args, remote)
	}

	_, err := c.run(ctx, args...)
	if err != nil {
		var gitErr *GitError
		if errors.As(err, &gitErr) && strings.Contains(gitErr.Output, "does not appear to be a git repository") {
			return &RemoteNotFoundError{Remote: remote}
		}
		return err
	}
	return nil
}

// Merge merges ref into the current branch with the auto-generated message
func (c *CLI) Merge(ctx context.Context, ref string) (MergeAttempt, error) {
	out, err := c.run(ctx, "merge", "--no-edit", ref)
	if err == nil {
		return MergeAttempt{UpToDate: strings.Contains(out, "Already up to date")}, nil
	}

	// A non-zero exit is a conflict only if git left a merge in progress
	inProgress, checkErr := c.MergeInProgress(ctx)
	if checkErr != nil || !inProgress {
		return MergeAttempt{}, err
	}

	conflicts, listErr := c.UnmergedPaths(ctx)
	if listErr != nil {
		return MergeAttempt{}, listErr
	}
	return MergeAttempt{Conflicted: true, Conflicts: conflicts}, nil
}

// MergeInProgress reports whether MERGE_HEAD exists
func (c *CLI) MergeInProgress(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD")
	if err == nil {
		return true, nil
	}
	if exitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// UnmergedPaths lists paths with unresolved conflicts
func (c *CLI) UnmergedPaths(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// CheckoutTheirs takes the incoming version of every path. Paths the incoming
// branch deleted have no "theirs" version and are removed instead.
func (c *CLI) CheckoutTheirs(ctx context.Context) error {
	_, err := c.run(ctx, "checkout", "--theirs", "--", ".")
	if err == nil {
		return nil
	}

	deleted, listErr := c.pathsWithoutTheirs(ctx)
	if listErr != nil || len(deleted) == 0 {
		return err
	}
	if _, rmErr := c.run(ctx, append([]string{"rm", "-f", "--quiet", "--"}, deleted...)...); rmErr != nil {
		return rmErr
	}

	_, err = c.run(ctx, "checkout", "--theirs", "--", ".")
	return err
}

// pathsWithoutTheirs returns unmerged paths that have no stage 3 entry
func (c *CLI) pathsWithoutTheirs(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-files", "-u")
	if err != nil {
		return nil, err
	}

	// <mode> <object> <stage>\t<path>
	stages := make(map[string]map[string]bool)
	var order []string
	for _, line := range splitLines(out) {
		meta, path, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			continue
		}
		if stages[path] == nil {
			stages[path] = make(map[string]bool)
			order = append(order, path)
		}
		stages[path][fields[2]] = true
	}

	var paths []string
	for _, path := range order {
		if !stages[path]["3"] {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// RestorePath sets path in the index and working tree to its content at rev.
// A path that does not exist at rev is removed.
func (c *CLI) RestorePath(ctx context.Context, rev, path string) error {
	exists, err := c.existsAt(ctx, rev, path)
	if err != nil {
		return err
	}
	if exists {
		_, err := c.run(ctx, "checkout", rev, "--", path)
		return err
	}

	if _, err := c.run(ctx, "rm", "-f", "--quiet", "--ignore-unmatch", "--", path); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(c.RepoPath, filepath.FromSlash(path))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *CLI) existsAt(ctx context.Context, rev, path string) (bool, error) {
	_, err := c.run(ctx, "cat-file", "-e", rev+":"+path)
	if err == nil {
		return true, nil
	}
	if exitCode(err) > 0 {
		return false, nil
	}
	return false, err
}

// PathChanged reports whether path in the index or working tree differs from rev
func (c *CLI) PathChanged(ctx context.Context, rev, path string) (bool, error) {
	for _, args := range [][]string{
		{"diff", "--quiet", rev, "--", path},
		{"diff", "--cached", "--quiet", rev, "--", path},
	} {
		_, err := c.run(ctx, args...)
		if err == nil {
			continue
		}
		if exitCode(err) == 1 {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// StageAll stages every change in the working tree
func (c *CLI) StageAll(ctx context.Context) error {
	_, err := c.run(ctx, "add", "-A")
	return err
}

// Commit records the index with a fixed message
func (c *CLI) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "--no-edit", "-m", message)
	return err
}

// Abort discards an in-progress merge and returns the branch to rev
func (c *CLI) Abort(ctx context.Context, rev string) error {
	inProgress, err := c.MergeInProgress(ctx)
	if err != nil {
		return err
	}
	if inProgress {
		if _, err := c.run(ctx, "merge", "--abort"); err != nil {
			return err
		}
	}

	head, err := c.Head(ctx)
	if err != nil {
		return err
	}
	if rev != "" && head.ID != rev {
		if _, err := c.run(ctx, "reset", "--hard", rev); err != nil {
			return err
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
