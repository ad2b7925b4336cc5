package main

import (
	"fmt"

	"github.com/wahlandcase/mergeall/internal/merge"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the remote branches a run would merge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			branches, err := s.candidates(cmd)
			if err != nil {
				return err
			}

			merge.NewReporter(cmd.OutOrStdout()).PrintCandidates(branches, s.repo.TargetBranch)
			if s.protected.Len() > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Protected paths: %v\n", s.protected.List())
			}
			return nil
		},
	}
}
