// Package chart decides which columns of a table play which role in a chart
// before anything is drawn.
package chart

import (
	"fmt"
	"path/filepath"
	"strings"

	"goplot/internal/failure"
)

type Kind string

const (
	Line      Kind = "line"
	Scatter   Kind = "scatter"
	Bar       Kind = "bar"
	Histogram Kind = "histogram"
	Pie       Kind = "pie"
)

var Kinds = []Kind{Line, Scatter, Bar, Histogram, Pie}

func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "line":
		return Line, nil
	case "scatter":
		return Scatter, nil
	case "bar":
		return Bar, nil
	case "histogram", "hist":
		return Histogram, nil
	case "pie":
		return Pie, nil
	default:
		return "", fmt.Errorf("unknown chart kind %q (supported: line|scatter|bar|histogram|pie): %w", value, failure.ErrInvalidSelection)
	}
}

// TwoAxis reports whether the kind plots Y values against an X column.
func (k Kind) TwoAxis() bool {
	return k == Line || k == Scatter || k == Bar
}

// SharesX reports whether extra columns become series against one X column.
func (k Kind) SharesX() bool {
	return k == Line || k == Scatter
}

type Role string

const (
	RoleX            Role = "x"
	RoleY            Role = "y"
	RoleSeries       Role = "series"
	RoleDistribution Role = "distribution"
	RoleNames        Role = "names"
	RoleValues       Role = "values"
)

type Request struct {
	Kind  Kind
	X     string
	Y     string
	Title string
}

type Assignment struct {
	Column int
	Name   string
	Role   Role
}

type Plan struct {
	Kind        Kind
	Title       string
	Assignments []Assignment
}

// Find returns the first assignment with the given role.
func (p Plan) Find(role Role) (Assignment, bool) {
	for _, assignment := range p.Assignments {
		if assignment.Role == role {
			return assignment, true
		}
	}
	return Assignment{}, false
}

// Values returns every Y, series or distribution assignment in plot order.
func (p Plan) Values() []Assignment {
	out := make([]Assignment, 0, len(p.Assignments))
	for _, assignment := range p.Assignments {
		switch assignment.Role {
		case RoleY, RoleSeries, RoleDistribution, RoleValues:
			out = append(out, assignment)
		}
	}
	return out
}

func (p Plan) ColumnNames() []string {
	names := make([]string, len(p.Assignments))
	for i, assignment := range p.Assignments {
		names[i] = assignment.Name
	}
	return names
}

// WithDefaultTitle fills an empty title from the source file name.
func (p Plan) WithDefaultTitle(source string) Plan {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle(source)
	}
	return p
}

func DefaultTitle(source string) string {
	if strings.TrimSpace(source) == "" {
		return "Chart"
	}
	return "Chart from file: " + filepath.Base(source)
}
