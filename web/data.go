package web

import (
	"math"
	"net/url"
	"time"

	"goplot/chart"
	"goplot/importer"
	"goplot/output"
)

type tableRow struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	LoadedAt time.Time `json:"loadedAt"`
	Link     string    `json:"link"`
}

type indexPageView struct {
	Title  string
	Tables []tableRow
}

type kindOption struct {
	Value    string
	Selected bool
}

type columnOption struct {
	Name     string
	Selected bool
}

type tablePageView struct {
	Title       string
	ID          string
	Name        string
	Format      string
	Delimiter   string
	Rows        int
	Columns     int
	Names       []string
	Head        [][]string
	StatsHeader []string
	Stats       [][]string
	Kinds       []kindOption
	XOptions    []columnOption
	YOptions    []columnOption
	ChartTitle  string
	ChartURL    string
}

type apiColumn struct {
	Name   string             `json:"name"`
	Type   string             `json:"type"`
	Count  int                `json:"count"`
	Stats  map[string]float64 `json:"stats,omitempty"`
	Unique int                `json:"unique,omitempty"`
	Top    string             `json:"top,omitempty"`
	Freq   int                `json:"freq,omitempty"`
}

type apiTable struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Format    string      `json:"format"`
	Delimiter string      `json:"delimiter"`
	Rows      int         `json:"rows"`
	Columns   []apiColumn `json:"columns"`
	Head      [][]string  `json:"head"`
}

func buildTableRows(entries []*loadedTable) []tableRow {
	rows := make([]tableRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, tableRow{
			ID:       entry.ID,
			Name:     entry.Name,
			Rows:     entry.Table.NumRows(),
			Columns:  entry.Table.NumColumns(),
			LoadedAt: entry.LoadedAt,
			Link:     "/table/" + entry.ID,
		})
	}
	return rows
}

func buildTablePageView(entry *loadedTable, summary output.Summary, req chart.Request) tablePageView {
	header, stats := output.StatsTable(summary)

	kinds := make([]kindOption, 0, len(chart.Kinds))
	for _, kind := range chart.Kinds {
		kinds = append(kinds, kindOption{Value: string(kind), Selected: kind == req.Kind})
	}

	return tablePageView{
		Title:       "goplot - " + entry.Name,
		ID:          entry.ID,
		Name:        entry.Name,
		Format:      entry.Table.Format,
		Delimiter:   entry.Table.Delimiter.String(),
		Rows:        summary.Rows,
		Columns:     summary.Columns,
		Names:       summary.Names,
		Head:        summary.Head,
		StatsHeader: header,
		Stats:       stats,
		Kinds:       kinds,
		XOptions:    columnOptions(summary.Names, req.X),
		YOptions:    columnOptions(summary.Names, req.Y),
		ChartTitle:  req.Title,
		ChartURL:    chartURL(entry.ID, req),
	}
}

func columnOptions(names []string, selected string) []columnOption {
	out := make([]columnOption, 0, len(names))
	for _, name := range names {
		out = append(out, columnOption{Name: name, Selected: name == selected})
	}
	return out
}

func chartURL(id string, req chart.Request) string {
	values := url.Values{}
	values.Set("kind", string(req.Kind))
	if req.X != "" {
		values.Set("x", req.X)
	}
	if req.Y != "" {
		values.Set("y", req.Y)
	}
	if req.Title != "" {
		values.Set("title", req.Title)
	}
	return "/table/" + id + "/chart.png?" + values.Encode()
}

// buildAPITable drops NaN statistics, which JSON cannot carry.
func buildAPITable(entry *loadedTable, summary output.Summary) apiTable {
	columns := make([]apiColumn, 0, len(summary.Stats))
	for _, s := range summary.Stats {
		column := apiColumn{Name: s.Name, Type: s.Type.String(), Count: s.Count}
		if s.Type == importer.Numeric {
			column.Stats = finiteStats(map[string]float64{
				"mean": s.Mean,
				"std":  s.Std,
				"min":  s.Min,
				"25%":  s.Q25,
				"50%":  s.Median,
				"75%":  s.Q75,
				"max":  s.Max,
			})
		} else {
			column.Unique = s.Unique
			column.Top = s.Top
			column.Freq = s.Freq
		}
		columns = append(columns, column)
	}

	return apiTable{
		ID:        entry.ID,
		Name:      entry.Name,
		Format:    entry.Table.Format,
		Delimiter: entry.Table.Delimiter.String(),
		Rows:      summary.Rows,
		Columns:   columns,
		Head:      summary.Head,
	}
}

func finiteStats(values map[string]float64) map[string]float64 {
	for key, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			delete(values, key)
		}
	}
	return values
}
