package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// table is a header-indexed view of a CSV file
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(path string) (*table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1 // ragged rows propagate as empty fields
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s has no header row", path)
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := t.columns[name]; !dup {
			t.columns[name] = i
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// column returns the index of the first present name, or -1.
func (t *table) column(names ...string) int {
	for _, name := range names {
		if idx, ok := t.columns[name]; ok {
			return idx
		}
	}
	return -1
}

func (t *table) requireColumn(file string, names ...string) (int, error) {
	idx := t.column(names...)
	if idx < 0 {
		return -1, fmt.Errorf("%s is missing required column %q", file, names[0])
	}
	return idx, nil
}

// field returns the cell exactly as stored; free-text columns keep their
// whitespace and line breaks.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// keyField returns a trimmed cell for columns used as lookup keys or labels.
func keyField(row []string, idx int) string {
	return strings.TrimSpace(field(row, idx))
}
