package loader

import "time"

// TableReport contains the outcome of loading one table.
type TableReport struct {
	Table    string        `json:"table" yaml:"table"`
	Vertices BatchReport   `json:"vertices" yaml:"vertices"`
	Edges    []BatchReport `json:"edges" yaml:"edges"`

	// Errors lists problems that stopped a pass early, such as a missing file or a
	// malformed row. Rejected batches are in the batch reports instead.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// AddError records a pass-level error.
func (t *TableReport) AddError(err error) *TableReport {
	t.Errors = append(t.Errors, err.Error())
	return t
}

// FailedBatches counts rejected batches over vertices and edges.
func (t TableReport) FailedBatches() int {
	n := t.Vertices.Failed()
	for _, e := range t.Edges {
		n += e.Failed()
	}
	return n
}

// EdgesWritten sums written edges over the table's relationships.
func (t TableReport) EdgesWritten() int {
	n := 0
	for _, e := range t.Edges {
		n += e.Written
	}
	return n
}

// LoadReport contains the outcome of one load run.
type LoadReport struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Backend   string        `json:"backend" yaml:"backend"`
	WriteMode string        `json:"write_mode" yaml:"write_mode"`
	BatchSize int           `json:"batch_size" yaml:"batch_size"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
	Tables    []TableReport `json:"tables" yaml:"tables"`

	// Aborted is set when a fatal error stopped the run before the last table.
	Aborted bool `json:"aborted" yaml:"aborted"`
}

// FailedBatches counts rejected batches over the whole run.
func (r *LoadReport) FailedBatches() int {
	n := 0
	for _, t := range r.Tables {
		n += t.FailedBatches()
	}
	return n
}

// TableErrors counts pass-level errors over the whole run.
func (r *LoadReport) TableErrors() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Errors)
	}
	return n
}

// VerticesWritten sums written vertices over all tables.
func (r *LoadReport) VerticesWritten() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Vertices.Written
	}
	return n
}

// EdgesWritten sums written edges over all tables.
func (r *LoadReport) EdgesWritten() int {
	n := 0
	for _, t := range r.Tables {
		n += t.EdgesWritten()
	}
	return n
}

// Complete reports whether every table was attempted and nothing failed.
func (r *LoadReport) Complete() bool {
	return !r.Aborted && r.FailedBatches() == 0 && r.TableErrors() == 0
}

// Table returns the report of the named table.
func (r *LoadReport) Table(name string) (TableReport, bool) {
	for _, t := range r.Tables {
		if t.Table == name {
			return t, true
		}
	}
	return TableReport{}, false
}
