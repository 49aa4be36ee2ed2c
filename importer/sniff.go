package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Delimiter rune

const (
	NoDelimiter Delimiter = 0
	Comma       Delimiter = ','
	Semicolon   Delimiter = ';'
	Tab         Delimiter = '\t'
	Space       Delimiter = ' '
)

// DefaultCandidates is the order delimiters are tried in. The first match
// wins, not the best fit.
var DefaultCandidates = []Delimiter{Comma, Semicolon, Tab, Space}

func (d Delimiter) String() string {
	switch d {
	case NoDelimiter:
		return "none"
	case Comma:
		return "comma"
	case Semicolon:
		return "semicolon"
	case Tab:
		return "tab"
	case Space:
		return "space"
	default:
		return fmt.Sprintf("%q", rune(d))
	}
}

// Whitespace reports whether rows split on runs of blanks rather than on a
// single separator character.
func (d Delimiter) Whitespace() bool {
	return d == NoDelimiter || d == Space
}

// SniffDelimiter returns the first candidate that occurs in line and splits it
// into more than one field, or NoDelimiter.
func SniffDelimiter(line string, candidates []Delimiter) Delimiter {
	line = strings.TrimSpace(line)
	if line == "" {
		return NoDelimiter
	}
	for _, candidate := range candidates {
		if candidate == NoDelimiter {
			continue
		}
		sep := string(rune(candidate))
		if !strings.Contains(line, sep) {
			continue
		}
		if len(strings.Split(line, sep)) > 1 {
			return candidate
		}
	}
	return NoDelimiter
}

// FirstDataLine returns the first line that is neither blank nor a comment.
func FirstDataLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isCommentLine(line) {
			continue
		}
		return line, nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read first line: %w", err)
	}
	return "", nil
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
