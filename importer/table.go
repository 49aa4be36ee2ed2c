package importer

import (
	"fmt"
	"strings"

	"goplot/internal/failure"
)

type ColumnType int

const (
	Categorical ColumnType = iota
	Numeric
)

func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "categorical"
}

type HeaderMode string

const (
	HeaderAuto    HeaderMode = "auto"
	HeaderPresent HeaderMode = "present"
	HeaderAbsent  HeaderMode = "absent"
)

func ParseHeaderMode(value string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return HeaderAuto, nil
	case "present", "yes", "true", "on":
		return HeaderPresent, nil
	case "absent", "no", "false", "off":
		return HeaderAbsent, nil
	default:
		return "", fmt.Errorf("invalid header mode %q (supported: auto|present|absent)", value)
	}
}

type Column struct {
	Name string
	Type ColumnType
	// Cells holds the raw trimmed text of every row.
	Cells []string
	// Values is set for numeric columns; empty cells are NaN.
	Values []float64
}

// Table is loaded once and never mutated afterwards.
type Table struct {
	Source    string
	Format    string
	Delimiter Delimiter
	Columns   []Column
}

// NewTable builds typed columns from raw rows. Short rows are padded with
// empty cells and cells beyond the header width are dropped.
func NewTable(rows [][]string, mode HeaderMode) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows: %w", failure.ErrUnreadableFormat)
	}

	first := rows[0]
	hasHeader := true
	switch mode {
	case HeaderAbsent:
		hasHeader = false
	case HeaderAuto, "":
		hasHeader = !allNumeric(first)
	}

	width := len(first)
	if !hasHeader {
		for _, row := range rows {
			width = max(width, len(row))
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("no columns: %w", failure.ErrUnreadableFormat)
	}

	headers := make([]string, width)
	for i := range headers {
		if hasHeader && i < len(first) && strings.TrimSpace(first[i]) != "" {
			headers[i] = strings.TrimSpace(first[i])
			continue
		}
		headers[i] = fmt.Sprintf("col%d", i+1)
	}

	body := rows
	if hasHeader {
		body = rows[1:]
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no data rows: %w", failure.ErrUnreadableFormat)
	}

	columns := make([]Column, width)
	for col := range columns {
		cells := make([]string, len(body))
		for i, row := range body {
			if col < len(row) {
				cells[i] = strings.TrimSpace(row[col])
			}
		}
		columns[col] = newColumn(headers[col], cells)
	}

	return &Table{Columns: columns}, nil
}

func newColumn(name string, cells []string) Column {
	column := Column{Name: name, Type: Categorical, Cells: cells}

	values := make([]float64, len(cells))
	parsed := 0
	for i, cell := range cells {
		value, ok := parseNumber(cell)
		if !ok && cell != "" {
			return column
		}
		if ok {
			parsed++
		}
		values[i] = value
	}
	if parsed == 0 {
		return column
	}

	column.Type = Numeric
	column.Values = values
	return column
}

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

func (t *Table) NumColumns() int {
	return len(t.Columns)
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		names[i] = column.Name
	}
	return names
}

// ColumnIndex finds a column by name, ignoring case, blanks, '-' and '_'.
func (t *Table) ColumnIndex(name string) (int, bool) {
	return IndexOf(t.ColumnNames(), name)
}

// IndexOf looks a name up the same way Table.ColumnIndex does.
func IndexOf(names []string, name string) (int, bool) {
	for i, candidate := range names {
		if candidate == name {
			return i, true
		}
	}
	wanted := normalizeHeader(name)
	for i, candidate := range names {
		if normalizeHeader(candidate) == wanted {
			return i, true
		}
	}
	return -1, false
}

// Head returns up to n rows of raw cells.
func (t *Table) Head(n int) [][]string {
	n = min(max(n, 0), t.NumRows())
	rows := make([][]string, n)
	for i := range rows {
		row := make([]string, len(t.Columns))
		for col, column := range t.Columns {
			row[col] = column.Cells[i]
		}
		rows[i] = row
	}
	return rows
}
