package merge

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/models"
)

// fakeBranch is an incoming branch known to fakeBackend
type fakeBranch struct {
	files     map[string]string
	conflicts []string
	mergeErr  error
	commitErr error
}

// fakeBackend simulates a repository as a list of file snapshots
type fakeBackend struct {
	commits  map[string]map[string]string
	messages map[string]string
	head     string
	worktree map[string]string
	theirs   map[string]string
	merging  string

	branches map[string]fakeBranch
	calls    []string
	aborts   []string
}

func newFakeBackend(files map[string]string) *fakeBackend {
	f := &fakeBackend{
		commits:  make(map[string]map[string]string),
		messages: make(map[string]string),
		branches: make(map[string]fakeBranch),
	}
	f.worktree = maps.Clone(files)
	f.record("init")
	return f
}

func (f *fakeBackend) record(message string) {
	id := fmt.Sprintf("c%d", len(f.commits))
	f.commits[id] = maps.Clone(f.worktree)
	f.messages[id] = message
	f.head = id
}

func (f *fakeBackend) Head(ctx context.Context) (models.CommitInfo, error) {
	return models.CommitInfo{ID: f.head, Hash: f.head, Message: f.messages[f.head]}, nil
}

func (f *fakeBackend) Merge(ctx context.Context, ref string) (git.MergeAttempt, error) {
	f.calls = append(f.calls, "merge "+ref)
	b, ok := f.branches[ref]
	if !ok {
		return git.MergeAttempt{}, &git.GitError{Command: "merge", Output: "merge: " + ref + " - not something we can merge", ExitCode: 1}
	}
	if b.mergeErr != nil {
		return git.MergeAttempt{}, b.mergeErr
	}

	if len(b.conflicts) > 0 {
		f.merging = ref
		f.theirs = b.files
		for path := range b.files {
			f.worktree[path] = "<<<<<<< conflict in " + path
		}
		return git.MergeAttempt{Conflicted: true, Conflicts: b.conflicts}, nil
	}

	if len(b.files) == 0 {
		return git.MergeAttempt{UpToDate: true}, nil
	}
	maps.Copy(f.worktree, b.files)
	f.record("Merge " + ref)
	return git.MergeAttempt{}, nil
}

func (f *fakeBackend) CheckoutTheirs(ctx context.Context) error {
	f.calls = append(f.calls, "checkout --theirs")
	maps.Copy(f.worktree, f.theirs)
	return nil
}

func (f *fakeBackend) RestorePath(ctx context.Context, rev, path string) error {
	f.calls = append(f.calls, "restore "+path)
	content, ok := f.commits[rev][path]
	if ok {
		f.worktree[path] = content
	} else {
		delete(f.worktree, path)
	}
	return nil
}

func (f *fakeBackend) PathChanged(ctx context.Context, rev, path string) (bool, error) {
	want, wantOK := f.commits[rev][path]
	got, gotOK := f.worktree[path]
	return want != got || wantOK != gotOK, nil
}

func (f *fakeBackend) StageAll(ctx context.Context) error {
	f.calls = append(f.calls, "add -A")
	return nil
}

func (f *fakeBackend) Commit(ctx context.Context, message string) error {
	f.calls = append(f.calls, "commit")
	if f.merging != "" {
		if err := f.branches[f.merging].commitErr; err != nil {
			return err
		}
	}
	f.merging = ""
	f.theirs = nil
	f.record(message)
	return nil
}

func (f *fakeBackend) Abort(ctx context.Context, rev string) error {
	f.calls = append(f.calls, "abort")
	f.aborts = append(f.aborts, rev)
	if _, ok := f.commits[rev]; !ok {
		return errors.New("unknown revision " + rev)
	}
	f.merging = ""
	f.theirs = nil
	f.head = rev
	f.worktree = maps.Clone(f.commits[rev])
	return nil
}

var _ Backend = (*fakeBackend)(nil)
