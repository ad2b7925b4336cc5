package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// RepoConfigName is the repository-local config file, read from the repository root
const RepoConfigName = ".mergeall.toml"

// DefaultProtectedPaths is the protected-path set used when none is configured.
// vite.config.ts carries a secret that exists only on the integration branch.
var DefaultProtectedPaths = []string{"vite.config.ts"}

// DefaultCommitMessage is the template for conflict-resolution merge commits.
// {branch} is replaced with the remote ref and {target} with the target branch.
const DefaultCommitMessage = "Merge {branch} into {target} with conflict resolution"

type Config struct {
	Merge MergeConfig `toml:"merge"`
	Log   LogConfig   `toml:"log"`

	// Compiled regexes from Merge.Exclude (not serialized)
	excludeRegexes []*regexp.Regexp
}

type MergeConfig struct {
	// Target is the integration branch; empty means the current branch
	Target string `toml:"target"`
	// Remote restricts candidates to one remote; empty means all remotes
	Remote         string   `toml:"remote"`
	ProtectedPaths []string `toml:"protected_paths"`
	// Exclude holds regexes matched against the branch name without the remote
	Exclude       []string `toml:"exclude"`
	CommitMessage string   `toml:"commit_message"`
	Fetch         bool     `toml:"fetch"`
	AllowDirty    bool     `toml:"allow_dirty"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Merge: MergeConfig{
			Remote:         "origin",
			ProtectedPaths: append([]string(nil), DefaultProtectedPaths...),
			CommitMessage:  DefaultCommitMessage,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the user-level config file location
func Path() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mergeall.toml"), nil
}

// Load reads the config at path, or the user-level config when path is empty.
// A missing user-level file yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			cfg := DefaultConfig()
			return cfg, cfg.compile()
		}
		path = p
	}

	cfg := DefaultConfig()
	if err := cfg.overlayFile(expandTilde(path)); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.compile()
		}
		return nil, err
	}

	return cfg, cfg.compile()
}

// ApplyRepo overlays the repository-local config file found in repoRoot, if any
func (c *Config) ApplyRepo(repoRoot string) error {
	err := c.overlayFile(filepath.Join(repoRoot, RepoConfigName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.compile()
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Recompile must be called after the exclusion patterns are changed outside Load
func (c *Config) Recompile() error {
	return c.compile()
}

func (c *Config) compile() error {
	c.excludeRegexes = nil
	for _, pattern := range c.Merge.Exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid merge.exclude pattern %q: %w", pattern, err)
		}
		c.excludeRegexes = append(c.excludeRegexes, re)
	}
	if c.Merge.CommitMessage == "" {
		c.Merge.CommitMessage = DefaultCommitMessage
	}
	return nil
}

// ExcludeRegexes returns the compiled exclusion patterns
func (c *Config) ExcludeRegexes() []*regexp.Regexp {
	return c.excludeRegexes
}

// Save writes the config to path, or to the user-level location when path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	path = expandTilde(path)

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Marshal renders the config as TOML
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// LogFile returns the configured log file with ~ expanded (empty for stderr)
func (c *Config) LogFile() string {
	return expandTilde(c.Log.File)
}

// CommitMessage renders the conflict-resolution commit message for a branch ref
func (c *Config) CommitMessage(branchRef, target string) string {
	r := strings.NewReplacer("{branch}", branchRef, "{target}", target)
	return r.Replace(c.Merge.CommitMessage)
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
