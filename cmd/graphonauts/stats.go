package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/tpch"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored vertex and edge counts per kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var counts graph.Counts
			err := a.withAdapter(ctx, func(adapter graph.Adapter) error {
				counter, ok := adapter.(graph.Counter)
				if !ok {
					return internal.NewCLIError(internal.ExitError,
						fmt.Sprintf("backend %s does not report counts", adapter.Backend()))
				}
				var err error
				counts, err = counter.Counts(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return printCounts(a.formatter(cmd), counts)
		},
	}
}

func printCounts(f internal.Formatter, counts graph.Counts) error {
	if f.Format() == internal.FormatJSON {
		return f.PrintJSON(counts)
	}

	var rows [][]string
	for _, name := range tpch.LoadOrder {
		rows = append(rows, []string{"vertex", name, strconv.FormatInt(counts.Vertices[name], 10)})
	}
	for _, rel := range tpch.Relationships() {
		rows = append(rows, []string{"edge", rel.Name, strconv.FormatInt(counts.Edges[rel.Name], 10)})
	}
	if err := f.PrintTable([]string{"type", "name", "count"}, rows); err != nil {
		return err
	}
	return f.PrintSuccess(fmt.Sprintf("%d vertices, %d edges", counts.TotalVertices(), counts.TotalEdges()))
}
