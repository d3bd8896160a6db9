package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/loader"
)

type loadOptions struct {
	noClear   bool
	tables    []string
	batchSize int
	dataDir   string
}

func newLoadCmd(a *app) *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the TPC-H dataset into the configured backend",
		Long: `Load reads <data-dir>/<table>.tbl for every TPC-H table and writes one
vertex per row and one edge per foreign key, table by table in dependency
order.

The namespace is cleared and its schema provisioned first. Use --no-clear to
keep existing data, for example to observe how a backend treats a second
load of the same rows.

A batch rejected by the backend is reported and the load continues; the
command then exits with status 13.`,
		Example: `  # Load everything into Neo4j
  graphonauts load --backend neo4j --data-dir ./data

  # Reload only the small dimension tables into ArangoDB
  graphonauts load -b arangodb --tables region,nation,supplier`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noClear, "no-clear", false, "Keep existing data instead of clearing the namespace first")
	cmd.Flags().StringSliceVar(&opts.tables, "tables", nil, "Load only these tables (comma separated)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Records per bulk write (default from config)")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory holding the .tbl files (default from config)")
	return cmd
}

func (a *app) runLoad(cmd *cobra.Command, opts *loadOptions) error {
	ctx := cmd.Context()

	batchSize := a.cfg.BatchSize
	if cmd.Flags().Changed("batch-size") {
		if opts.batchSize <= 0 {
			return internal.NewCLIError(internal.ExitConfigError, "--batch-size must be positive")
		}
		batchSize = opts.batchSize
	}
	dataDir := a.cfg.DataDir
	if opts.dataDir != "" {
		dataDir = opts.dataDir
	}
	tables := a.cfg.Tables
	if len(opts.tables) > 0 {
		tables = opts.tables
	}

	var report *loader.LoadReport
	err := a.withAdapter(ctx, func(adapter graph.Adapter) error {
		driver, err := loader.NewDriver(adapter, loader.DirOpener(dataDir), loader.DriverConfig{
			BatchSize:      batchSize,
			Tables:         tables,
			Logger:         a.logger,
			Metrics:        a.metrics,
			TracerProvider: a.tracer,
		})
		if err != nil {
			return err
		}

		if !opts.noClear {
			if err := adapter.Clear(ctx); err != nil {
				return err
			}
		}
		if err := adapter.ProvisionSchema(ctx); err != nil {
			return err
		}

		report, err = driver.Run(ctx)
		return err
	})

	if report != nil {
		if perr := printLoadReport(a.formatter(cmd), report); perr != nil {
			a.logger.Warn("failed to print report", "error", perr)
		}
	}
	if err != nil {
		return err
	}
	if !report.Complete() {
		return internal.NewCLIError(internal.ExitPartial,
			fmt.Sprintf("load finished with %d failed batches and %d table errors",
				report.FailedBatches(), report.TableErrors()))
	}
	return nil
}

func printLoadReport(f internal.Formatter, report *loader.LoadReport) error {
	if f.Format() == internal.FormatJSON {
		return f.PrintJSON(report)
	}

	rows := make([][]string, 0, len(report.Tables))
	for _, t := range report.Tables {
		rows = append(rows, []string{
			t.Table,
			strconv.Itoa(t.Vertices.Written),
			strconv.Itoa(t.EdgesWritten()),
			strconv.Itoa(t.FailedBatches()),
			strings.Join(t.Errors, "; "),
			t.Elapsed.Round(time.Millisecond).String(),
		})
	}
	if err := f.PrintTable([]string{"table", "vertices", "edges", "failed", "errors", "elapsed"}, rows); err != nil {
		return err
	}

	summary := fmt.Sprintf("%s: %d vertices and %d edges in %s (run %s)",
		report.Backend, report.VerticesWritten(), report.EdgesWritten(),
		report.Elapsed.Round(time.Millisecond), report.RunID)
	if report.Complete() {
		return f.PrintSuccess(summary)
	}
	return f.PrintWarning(summary)
}
