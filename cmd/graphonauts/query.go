package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/bench"
	"github.com/obonovai/graphonauts/internal/graph"
)

type queryOptions struct {
	ids      []string
	category string
	repeat   int
	show     bool
}

func newQueryCmd(a *app) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the query catalogue against the configured backend",
		Long: `Query runs the backend's query catalogue, one query at a time, and reports
row counts and wall-clock timings.

A failing query is reported and the run continues; the command then exits
with status 13. Losing the connection stops the run.`,
		Example: `  # Run every query once
  graphonauts query

  # Time the traversal queries five times each
  graphonauts query --category traversal --repeat 5

  # Run A1 and print its rows
  graphonauts query --ids A1 --show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.ids, "ids", nil, "Run only these query IDs (comma separated)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Run only queries of this category")
	cmd.Flags().IntVar(&opts.repeat, "repeat", 0, "Executions per query (default from config)")
	cmd.Flags().BoolVar(&opts.show, "show", false, "Print the returned rows")

	cmd.AddCommand(newQueryListCmd(a))
	cmd.AddCommand(newQueryExecCmd(a))
	return cmd
}

// catalogue returns the configured backend's queries narrowed by ids and category.
func (a *app) catalogue(ids []string, category string) ([]bench.Query, error) {
	backend, err := a.cfg.SelectedBackend()
	if err != nil {
		return nil, err
	}
	queries, err := bench.Catalogue(backend, a.cfg.BenchOptions())
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		if queries, err = bench.Select(queries, ids...); err != nil {
			return nil, err
		}
	}
	if category != "" {
		c, err := bench.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		queries = bench.SelectCategory(queries, c)
	}
	if len(queries) == 0 {
		return nil, internal.NewCLIError(internal.ExitConfigError, "no queries match the selection")
	}
	return queries, nil
}

func (a *app) runQuery(cmd *cobra.Command, opts *queryOptions) error {
	ctx := cmd.Context()

	queries, err := a.catalogue(opts.ids, opts.category)
	if err != nil {
		return err
	}
	repetitions := a.cfg.Bench.Repetitions
	if cmd.Flags().Changed("repeat") {
		if opts.repeat <= 0 {
			return internal.NewCLIError(internal.ExitConfigError, "--repeat must be positive")
		}
		repetitions = opts.repeat
	}

	var report *bench.Report
	err = a.withAdapter(ctx, func(adapter graph.Adapter) error {
		runner := bench.NewRunner(adapter, bench.RunnerConfig{
			Repetitions:    repetitions,
			KeepRecords:    opts.show,
			Logger:         a.logger,
			Metrics:        a.metrics,
			TracerProvider: a.tracer,
		})
		var err error
		report, err = runner.RunCatalogue(ctx, queries)
		return err
	})

	if report != nil {
		if perr := printQueryReport(a.formatter(cmd), report); perr != nil {
			a.logger.Warn("failed to print report", "error", perr)
		}
	}
	if err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return internal.NewCLIError(internal.ExitPartial,
			fmt.Sprintf("%d of %d queries failed", n, len(report.Results)))
	}
	return nil
}

func printQueryReport(f internal.Formatter, report *bench.Report) error {
	if f.Format() == internal.FormatJSON {
		return f.PrintJSON(report)
	}

	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		status := "ok"
		if r.Failed() {
			status = r.Error
		}
		rows = append(rows, []string{
			r.ID,
			string(r.Category),
			strconv.Itoa(r.Rows),
			formatDuration(r.Elapsed),
			formatDuration(r.Min),
			formatDuration(r.Max),
			status,
		})
	}
	if err := f.PrintTable([]string{"id", "category", "rows", "mean", "min", "max", "status"}, rows); err != nil {
		return err
	}

	for _, r := range report.Results {
		if len(r.Records) == 0 {
			continue
		}
		if err := f.PrintSuccess(fmt.Sprintf("%s: %s", r.ID, r.Description)); err != nil {
			return err
		}
		if err := printRecords(f, r.Columns, r.Records); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%s: %d queries, %d failed in %s (run %s)",
		report.Backend, len(report.Results), report.Failed(),
		report.Elapsed.Round(time.Millisecond), report.RunID)
	if report.Failed() == 0 && !report.Aborted {
		return f.PrintSuccess(summary)
	}
	return f.PrintWarning(summary)
}

// printRecords prints rows as a table. Columns default to the sorted keys of the
// first row when the backend reported none.
func printRecords(f internal.Formatter, columns []string, records []map[string]any) error {
	if len(columns) == 0 && len(records) > 0 {
		for k := range records[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = fmt.Sprint(rec[c])
		}
		rows = append(rows, row)
	}
	return f.PrintTable(columns, rows)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Microsecond).String()
}

func newQueryListCmd(a *app) *cobra.Command {
	var (
		category string
		text     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configured backend's query catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := a.catalogue(nil, category)
			if err != nil {
				return err
			}

			f := a.formatter(cmd)
			if f.Format() == internal.FormatJSON {
				return f.PrintJSON(queries)
			}
			headers := []string{"id", "category", "description"}
			if text {
				headers = append(headers, "query")
			}
			rows := make([][]string, 0, len(queries))
			for _, q := range queries {
				row := []string{q.ID, string(q.Category), q.Description}
				if text {
					row = append(row, strings.Join(strings.Fields(q.Text), " "))
				}
				rows = append(rows, row)
			}
			return f.PrintTable(headers, rows)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "List only queries of this category")
	cmd.Flags().BoolVar(&text, "text", false, "Include the query text")
	return cmd
}

func newQueryExecCmd(a *app) *cobra.Command {
	var params map[string]string
	cmd := &cobra.Command{
		Use:     "exec <query>",
		Short:   "Run one native query (AQL, Cypher or nGQL) and print its rows",
		Example: `  graphonauts query exec -b neo4j 'MATCH (s:Supplier {key: $key}) RETURN s.name AS name' --param key=1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			bound := make(map[string]any, len(params))
			for k, v := range params {
				bound[k] = parseParam(v)
			}

			var result graph.QueryResult
			err := a.withAdapter(ctx, func(adapter graph.Adapter) error {
				var err error
				result, err = adapter.Query(ctx, args[0], bound)
				return err
			})
			if err != nil {
				return err
			}

			f := a.formatter(cmd)
			if f.Format() == internal.FormatJSON {
				return f.PrintJSON(map[string]any{
					"columns": result.Columns,
					"records": result.Records,
					"elapsed": result.Elapsed,
				})
			}
			if err := printRecords(f, result.Columns, result.Records); err != nil {
				return err
			}
			return f.PrintSuccess(fmt.Sprintf("%d rows in %s", result.Len(), formatDuration(result.Elapsed)))
		},
	}
	cmd.Flags().StringToStringVar(&params, "param", nil, "Bind a query parameter (key=value, repeatable)")
	return cmd
}

// parseParam binds integers and floats by value and everything else as a string.
func parseParam(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(v, 64); err == nil {
		return x
	}
	return v
}
