// Package failure names the ways loading, selecting and rendering a chart can
// fail, so callers can branch on the kind with errors.Is.
package failure

import "errors"

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrUnreadableFormat    = errors.New("unreadable or corrupt format")
	ErrInsufficientColumns = errors.New("insufficient columns for requested chart")
	ErrInvalidSelection    = errors.New("invalid selection")
	ErrRender              = errors.New("render failed")
)

type Kind string

const (
	KindNone                Kind = ""
	KindFileNotFound        Kind = "file_not_found"
	KindUnreadableFormat    Kind = "unreadable_format"
	KindInsufficientColumns Kind = "insufficient_columns"
	KindInvalidSelection    Kind = "invalid_selection"
	KindRender              Kind = "render"
	KindOther               Kind = "other"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrFileNotFound, KindFileNotFound},
	{ErrUnreadableFormat, KindUnreadableFormat},
	{ErrInsufficientColumns, KindInsufficientColumns},
	{ErrInvalidSelection, KindInvalidSelection},
	{ErrRender, KindRender},
}

// KindOf reports which failure an error chain carries. nil maps to KindNone
// and errors outside this package map to KindOther.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, candidate := range kinds {
		if errors.Is(err, candidate.sentinel) {
			return candidate.kind
		}
	}
	return KindOther
}
