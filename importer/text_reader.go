package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"goplot/internal/failure"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextReader reads delimited or whitespace-separated text. The delimiter is
// sniffed from the first line that is not a '#' comment.
type TextReader struct {
	Header     HeaderMode
	Candidates []Delimiter
}

func (r *TextReader) Read(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer file.Close()

	// UTF-8 by default; a BOM switches to UTF-16.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	content, err := io.ReadAll(transform.NewReader(file, decoder))
	if err != nil {
		return nil, fmt.Errorf("decode text file %s: %w: %w", path, failure.ErrUnreadableFormat, err)
	}

	table, err := ParseText(content, r.Header, r.Candidates)
	if err != nil {
		return nil, fmt.Errorf("parse text file %s: %w", path, err)
	}
	return table, nil
}

// ParseText builds a Table from decoded text. A nil candidate list uses
// DefaultCandidates.
func ParseText(content []byte, header HeaderMode, candidates []Delimiter) (*Table, error) {
	if candidates == nil {
		candidates = DefaultCandidates
	}

	sample, err := FirstDataLine(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", failure.ErrUnreadableFormat, err)
	}
	delimiter := SniffDelimiter(sample, candidates)

	var rows [][]string
	if delimiter.Whitespace() {
		rows, err = splitWhitespace(content)
	} else {
		rows, err = splitDelimited(content, delimiter)
	}
	if err != nil {
		return nil, err
	}

	table, err := NewTable(rows, header)
	if err != nil {
		return nil, err
	}
	table.Delimiter = delimiter
	return table, nil
}

func splitDelimited(content []byte, delimiter Delimiter) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = rune(delimiter)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// Leading-space trimming would also eat empty tab-separated fields.
	reader.TrimLeadingSpace = delimiter != Tab

	rows := make([][]string, 0, 128)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s separated row: %w: %w", delimiter, failure.ErrUnreadableFormat, err)
		}
		if len(row) > 0 && isCommentLine(row[0]) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitWhitespace splits on blank runs and drops '#' comments, including
// trailing ones.
func splitWhitespace(content []byte) ([][]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	rows := make([][]string, 0, 128)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read whitespace separated rows: %w: %w", failure.ErrUnreadableFormat, err)
	}
	return rows, nil
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open %s: %w", path, failure.ErrFileNotFound)
	}
	return fmt.Errorf("open %s: %w", path, err)
}
