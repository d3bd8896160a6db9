package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/internal/graph"
)

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every vertex and edge from the configured backend",
		Long: `Clear removes the data created by 'graphonauts load'. ArangoDB collections
are truncated, the NebulaGraph space is dropped and Cypher backends delete
every labelled vertex with its edges. Clearing an empty namespace succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var backend graph.Backend
			err := a.withAdapter(ctx, func(adapter graph.Adapter) error {
				backend = adapter.Backend()
				return adapter.Clear(ctx)
			})
			if err != nil {
				return err
			}
			return a.formatter(cmd).PrintSuccess(fmt.Sprintf("cleared %s", backend))
		},
	}
}
