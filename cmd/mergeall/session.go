package main

import (
	"fmt"
	"os"

	"github.com/wahlandcase/mergeall/internal/config"
	"github.com/wahlandcase/mergeall/internal/git"
	"github.com/wahlandcase/mergeall/internal/logging"
	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/models"

	"github.com/spf13/cobra"
)

// session is the resolved configuration of one invocation
type session struct {
	cfg       *config.Config
	repo      models.RepoInfo
	protected models.ProtectedPaths

	// current is the checked-out branch, empty when HEAD is detached
	current string
	logger  *logging.Logger
	git     *git.CLI
}

// loadConfig loads the user config, the repository overlay (when repoRoot is
// set) and the command-line overrides, in that order
func loadConfig(cmd *cobra.Command, repoRoot string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if repoRoot != "" {
		if err := cfg.ApplyRepo(repoRoot); err != nil {
			return nil, fmt.Errorf("failed to load repository config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("target") {
		cfg.Merge.Target = target
	}
	if flags.Changed("remote") {
		cfg.Merge.Remote = remote
	}
	if flags.Changed("protect") {
		cfg.Merge.ProtectedPaths = protect
	}
	if flags.Changed("exclude") {
		cfg.Merge.Exclude = append(cfg.Merge.Exclude, exclude...)
	}
	if flags.Changed("fetch") {
		cfg.Merge.Fetch = fetch
	}
	if flags.Changed("allow-dirty") {
		cfg.Merge.AllowDirty = allowDirty
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Recompile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func repoRoot() (string, error) {
	path := repoPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		path = wd
	}
	return git.FindRepoRoot(path)
}

func newSession(cmd *cobra.Command) (*session, error) {
	root, err := repoRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd, root)
	if err != nil {
		return nil, err
	}

	protected, err := models.NewProtectedPaths(cfg.Merge.ProtectedPaths...)
	if err != nil {
		return nil, fmt.Errorf("invalid protected path: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.LogFile(),
	})
	if err != nil {
		return nil, err
	}

	info, err := git.GetRepoInfo(root)
	if err != nil {
		logger.Close()
		return nil, err
	}
	var current string
	if !info.Detached {
		current = info.TargetBranch
	}
	repo := info.WithTarget(cfg.Merge.Target)
	if repo.Detached {
		logger.Warn("HEAD is detached; using the detected main branch as target", "target", repo.TargetBranch)
	}

	logger.Debug("session",
		"repo", repo.Path,
		"target", repo.TargetBranch,
		"remote", cfg.Merge.Remote,
		"protected", protected.List(),
		"exclude", cfg.Merge.Exclude,
	)

	return &session{
		cfg:       cfg,
		repo:      repo,
		protected: protected,
		current:   current,
		logger:    logger,
		git:       git.NewCLI(root, logger.Logger),
	}, nil
}

// requireTargetCheckedOut fails unless merges would land on the target branch
func (s *session) requireTargetCheckedOut() error {
	if s.current != "" && s.current == s.repo.TargetBranch {
		return nil
	}
	return &merge.TargetNotCheckedOutError{Target: s.repo.TargetBranch, Current: s.current}
}

func (s *session) close() {
	s.logger.Close()
}

func (s *session) source() *merge.Source {
	return merge.NewSource(s.repo.Path, s.repo.TargetBranch, s.cfg.Merge.Remote, s.cfg.ExcludeRegexes())
}

// candidates fetches when configured and lists the branches to integrate
func (s *session) candidates(cmd *cobra.Command) ([]models.Branch, error) {
	ctx := cmd.Context()
	if s.cfg.Merge.Fetch {
		fmt.Fprintln(cmd.OutOrStdout(), "Fetching remotes...")
		if err := s.git.Fetch(ctx, s.cfg.Merge.Remote); err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
	}
	return s.source().ListIntegrationCandidates(ctx)
}
