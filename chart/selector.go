package chart

import (
	"fmt"

	"goplot/importer"
	"goplot/internal/failure"
)

const DefaultHistogramCap = 3

// ErrUnknownColumn is returned when a request names a column the table does
// not have. It counts as an invalid selection.
var ErrUnknownColumn = fmt.Errorf("unknown column: %w", failure.ErrInvalidSelection)

type Selector struct {
	// HistogramCap limits how many leading columns a histogram overlays.
	// Zero means DefaultHistogramCap.
	HistogramCap int
}

// Select validates req against the table's column names and assigns roles.
// It never panics on small tables; it returns failure.ErrInsufficientColumns.
func (s Selector) Select(columns []string, req Request) (Plan, error) {
	kind := req.Kind
	if kind == "" {
		kind = Line
	}
	plan := Plan{Kind: kind, Title: req.Title}

	n := len(columns)
	if n == 0 {
		return plan, fmt.Errorf("%s chart on empty table: %w", kind, failure.ErrInsufficientColumns)
	}

	switch {
	case kind.TwoAxis():
		return s.selectTwoAxis(plan, columns, req)
	case kind == Histogram:
		return s.selectHistogram(plan, columns), nil
	case kind == Pie:
		return s.selectPie(plan, columns, req)
	default:
		return plan, fmt.Errorf("unknown chart kind %q: %w", kind, failure.ErrInvalidSelection)
	}
}

func (s Selector) selectTwoAxis(plan Plan, columns []string, req Request) (Plan, error) {
	if len(columns) < 2 {
		return plan, fmt.Errorf("%s chart needs 2 columns, table has %d: %w", plan.Kind, len(columns), failure.ErrInsufficientColumns)
	}

	x, err := resolve(columns, req.X, 0)
	if err != nil {
		return plan, err
	}
	plan.Assignments = append(plan.Assignments, Assignment{Column: x, Name: columns[x], Role: RoleX})

	if req.Y != "" {
		y, err := resolve(columns, req.Y, -1)
		if err != nil {
			return plan, err
		}
		plan.Assignments = append(plan.Assignments, Assignment{Column: y, Name: columns[y], Role: RoleY})
		return plan, nil
	}

	others := make([]int, 0, len(columns)-1)
	for i := range columns {
		if i != x {
			others = append(others, i)
		}
	}

	if len(others) == 1 || !plan.Kind.SharesX() {
		y := others[0]
		plan.Assignments = append(plan.Assignments, Assignment{Column: y, Name: columns[y], Role: RoleY})
		return plan, nil
	}

	for _, i := range others {
		plan.Assignments = append(plan.Assignments, Assignment{Column: i, Name: columns[i], Role: RoleSeries})
	}
	return plan, nil
}

func (s Selector) selectHistogram(plan Plan, columns []string) Plan {
	limit := s.HistogramCap
	if limit <= 0 {
		limit = DefaultHistogramCap
	}
	for i := 0; i < min(limit, len(columns)); i++ {
		plan.Assignments = append(plan.Assignments, Assignment{Column: i, Name: columns[i], Role: RoleDistribution})
	}
	return plan
}

func (s Selector) selectPie(plan Plan, columns []string, req Request) (Plan, error) {
	if len(columns) < 2 {
		return plan, fmt.Errorf("pie chart needs a names and a values column, table has %d: %w", len(columns), failure.ErrInsufficientColumns)
	}

	names, err := resolve(columns, req.X, 0)
	if err != nil {
		return plan, err
	}
	fallback := 1
	if names == 1 {
		fallback = 0
	}
	values, err := resolve(columns, req.Y, fallback)
	if err != nil {
		return plan, err
	}

	plan.Assignments = append(plan.Assignments,
		Assignment{Column: names, Name: columns[names], Role: RoleNames},
		Assignment{Column: values, Name: columns[values], Role: RoleValues},
	)
	return plan, nil
}

func resolve(columns []string, name string, fallback int) (int, error) {
	if name == "" {
		return fallback, nil
	}
	idx, ok := importer.IndexOf(columns, name)
	if !ok {
		return -1, fmt.Errorf("%w %q (available: %v)", ErrUnknownColumn, name, columns)
	}
	return idx, nil
}
