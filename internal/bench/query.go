package bench

import (
	"fmt"
	"sort"
	"strings"

	"github.com/obonovai/graphonauts/internal/graph"
	"github.com/obonovai/graphonauts/internal/types"
)

// ErrCodeUnknownQuery marks a query ID that no catalogue defines.
const ErrCodeUnknownQuery types.ErrorCode = "BENCH_UNKNOWN_QUERY"

// Category groups queries by the capability they exercise.
type Category string

const (
	CategorySelection   Category = "selection"
	CategoryAggregation Category = "aggregation"
	CategoryJoin        Category = "join"
	CategoryTraversal   Category = "traversal"
	CategorySet         Category = "set"
	CategorySort        Category = "sort"
)

// Categories lists every category in catalogue order.
func Categories() []Category {
	return []Category{
		CategorySelection,
		CategoryAggregation,
		CategoryJoin,
		CategoryTraversal,
		CategorySet,
		CategorySort,
	}
}

// ParseCategory resolves a category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", types.NewError(ErrCodeUnknownQuery, fmt.Sprintf("unknown query category %q", s))
}

// Query is one catalogue entry in a backend's native query language.
type Query struct {
	ID          string         `json:"id" yaml:"id"`
	Category    Category       `json:"category" yaml:"category"`
	Description string         `json:"description" yaml:"description"`
	Text        string         `json:"text" yaml:"text"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	// CountOnly marks queries with large results whose rows are counted but not kept.
	CountOnly bool `json:"count_only,omitempty" yaml:"count_only,omitempty"`
}

// Options are the literal values the catalogue queries select on.
type Options struct {
	SupplierName string `mapstructure:"supplier_name" yaml:"supplier_name"`
	SupplierKey  int64  `mapstructure:"supplier_key" yaml:"supplier_key"`

	// DateFrom and DateTo bound the order date range, as YYYY-MM-DD.
	DateFrom string `mapstructure:"date_from" yaml:"date_from"`
	DateTo   string `mapstructure:"date_to" yaml:"date_to"`

	CustomerFrom int64  `mapstructure:"customer_from" yaml:"customer_from"`
	CustomerTo   int64  `mapstructure:"customer_to" yaml:"customer_to"`
	Region       string `mapstructure:"region" yaml:"region"`
	NationKey    int64  `mapstructure:"nation_key" yaml:"nation_key"`
	Limit        int    `mapstructure:"limit" yaml:"limit"`

	// Graph is the ArangoDB named graph used by shortest-path queries.
	Graph string `mapstructure:"graph" yaml:"graph"`
}

// DefaultOptions returns values that select non-empty results on a scale factor 1
// dataset.
func DefaultOptions() Options {
	return Options{
		SupplierName: "Supplier#000000666",
		SupplierKey:  1337,
		DateFrom:     "1990-01-01",
		DateTo:       "1995-12-31",
		CustomerFrom: 1,
		CustomerTo:   1000,
		Region:       "ASIA",
		NationKey:    7,
		Limit:        10,
		Graph:        "tpchgraph",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SupplierName == "" {
		o.SupplierName = d.SupplierName
	}
	if o.SupplierKey == 0 {
		o.SupplierKey = d.SupplierKey
	}
	if o.DateFrom == "" {
		o.DateFrom = d.DateFrom
	}
	if o.DateTo == "" {
		o.DateTo = d.DateTo
	}
	if o.CustomerFrom == 0 && o.CustomerTo == 0 {
		o.CustomerFrom, o.CustomerTo = d.CustomerFrom, d.CustomerTo
	}
	if o.Region == "" {
		o.Region = d.Region
	}
	if o.NationKey == 0 {
		o.NationKey = d.NationKey
	}
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	if o.Graph == "" {
		o.Graph = d.Graph
	}
	return o
}

// Catalogue returns the ordered query catalogue for backend.
func Catalogue(backend graph.Backend, opts Options) ([]Query, error) {
	opts = opts.withDefaults()
	switch backend {
	case graph.BackendNeo4j:
		return cypherCatalogue(opts, false), nil
	case graph.BackendMemgraph:
		return cypherCatalogue(opts, true), nil
	case graph.BackendArangoDB:
		return aqlCatalogue(opts), nil
	case graph.BackendNebula:
		return ngqlCatalogue(opts), nil
	default:
		return nil, types.NewError(graph.ErrCodeGraphUnsupportedBackend,
			fmt.Sprintf("no query catalogue for backend %q", backend))
	}
}

// Select returns the queries with the given IDs in catalogue order. No IDs selects all.
func Select(queries []Query, ids ...string) ([]Query, error) {
	if len(ids) == 0 {
		return queries, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[strings.ToUpper(strings.TrimSpace(id))] = true
	}

	out := make([]Query, 0, len(ids))
	for _, q := range queries {
		if wanted[q.ID] {
			out = append(out, q)
			delete(wanted, q.ID)
		}
	}
	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for id := range wanted {
			missing = append(missing, id)
		}
		sort.Strings(missing)
		return nil, types.NewError(ErrCodeUnknownQuery,
			fmt.Sprintf("unknown query id(s): %s", strings.Join(missing, ", ")))
	}
	return out, nil
}

// SelectCategory returns the queries of one category in catalogue order.
func SelectCategory(queries []Query, category Category) []Query {
	var out []Query
	for _, q := range queries {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}
