package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/wahlandcase/mergeall/internal/merge"
	"github.com/wahlandcase/mergeall/internal/ui"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	repoPath   string
	target     string
	remote     string
	protect    []string
	exclude    []string
	fetch      bool
	allowDirty bool
	dryRun     bool
	assumeYes  bool
	useTUI     bool
	noColor    bool
	reportPath string
	logLevel   string
	logFormat  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		// The summary already said which branches failed
		if !errors.Is(err, merge.ErrBranchesFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mergeall",
		Short: "Merge every remote branch into the current branch",
		Long: `mergeall merges each remote-tracking branch into the current branch, one at a time.

Conflicts are resolved by taking the incoming branch's version of every file,
except protected paths, which keep the current branch's content. A branch that
cannot be merged is rolled back and the run moves on to the next one.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.ConfigureOutput(cmd.OutOrStdout(), !noColor && os.Getenv("NO_COLOR") == "")
		},
		RunE: runMerge,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default: user config dir mergeall.toml)")
	pf.StringVarP(&repoPath, "repo", "C", "", "Repository to operate on (default: current directory)")
	pf.StringVarP(&target, "target", "t", "", "Branch to merge into; must be checked out (default: current branch)")
	pf.StringVar(&remote, "remote", "", "Only merge branches from this remote (\"\" for all remotes)")
	pf.StringArrayVarP(&protect, "protect", "p", nil, "Protected path kept at the target's version (repeatable, replaces configured paths)")
	pf.StringArrayVarP(&exclude, "exclude", "x", nil, "Regex of branch names to skip (repeatable, added to configured patterns)")
	pf.BoolVar(&fetch, "fetch", false, "Fetch and prune remotes before listing branches")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&logLevel, "log-level", "", "Diagnostic log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Diagnostic log format: text or json")

	f := rootCmd.Flags()
	f.BoolVar(&allowDirty, "allow-dirty", false, "Run even if the working tree has uncommitted changes")
	f.BoolVar(&dryRun, "dry-run", false, "List the branches that would be merged without merging")
	f.BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	f.BoolVar(&useTUI, "tui", false, "Show an interactive progress view")
	f.StringVar(&reportPath, "report", "", "Write a run report to this file (.json, .yaml or .yml)")

	rootCmd.AddCommand(newListCmd(), newConfigCmd())
	return rootCmd
}
