package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/types"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				backend graph.Backend
				status  types.HealthStatus
			)
			err := a.withAdapter(ctx, func(adapter graph.Adapter) error {
				backend = adapter.Backend()
				checker, ok := adapter.(graph.HealthChecker)
				if !ok {
					status = types.Healthy("connected")
					return nil
				}
				status = checker.Health(ctx)
				return nil
			})
			if err != nil {
				return err
			}

			f := a.formatter(cmd)
			if f.Format() == internal.FormatJSON {
				if err := f.PrintJSON(map[string]any{"backend": backend, "health": status}); err != nil {
					return err
				}
			} else {
				msg := status.Describe(string(backend))
				switch status.State {
				case types.HealthStateHealthy:
					err = f.PrintSuccess(msg)
				case types.HealthStateDegraded:
					err = f.PrintWarning(msg)
				default:
					err = f.PrintError(msg)
				}
				if err != nil {
					return err
				}
			}

			if status.IsUnhealthy() {
				return internal.NewCLIError(internal.ExitConnectionError, fmt.Sprintf("%s is unhealthy", backend))
			}
			return nil
		},
	}
}
