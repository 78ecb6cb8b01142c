package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Row is one record of a reference table keyed by lower-case column name.
// Columns that are absent or blank are treated as missing.
type Row struct {
	Line   int
	values map[string]string
}

// NewRow builds a Row from column values. Keys are lower-cased and values
// trimmed.
func NewRow(line int, values map[string]string) Row {
	r := Row{Line: line, values: make(map[string]string, len(values))}
	for k, v := range values {
		r.values[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return r
}

// Has reports whether column is present and non-blank.
func (r Row) Has(column string) bool {
	return r.values[column] != ""
}

// String returns the column value or def when missing.
func (r Row) String(column, def string) string {
	if v := r.values[column]; v != "" {
		return v
	}
	return def
}

// Required returns the column value or an error when missing.
func (r Row) Required(column string) (string, error) {
	v := r.values[column]
	if v == "" {
		return "", fmt.Errorf("row %d: missing required column %q", r.Line, column)
	}
	return v, nil
}

// Float returns the column parsed as float64, or def when missing.
//
// Postcondition: Returns a parse error naming the row and column on malformed input.
func (r Row) Float(column string, def float64) (float64, error) {
	v := r.values[column]
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("row %d: column %q: %w", r.Line, column, err)
	}
	return f, nil
}

// Int returns the column parsed as an int, or def when missing. Values
// written as floats ("30.0") are accepted when integral.
func (r Row) Int(column string, def int) (int, error) {
	v := r.values[column]
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("row %d: column %q: invalid integer %q", r.Line, column, v)
	}
	return int(f), nil
}

// ReadTable reads the rows of a reference table. Files ending in .csv are
// read as header-keyed CSV; .yaml and .yml files must hold a mapping whose
// key names the table ("biomes: [...]").
//
// Precondition: key is the YAML section name; ignored for CSV.
// Postcondition: Returns rows in file order, or an error wrapping
// fs.ErrNotExist when the file is absent.
func ReadTable(path, key string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(f)
	case ".yaml", ".yml":
		return readYAML(f, key)
	default:
		return nil, fmt.Errorf("table %s: unsupported extension %q", path, filepath.Ext(path))
	}
}

// IsMissing reports whether err means the table file does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func readCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var rows []Row
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", line, err)
		}
		values := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				values[col] = rec[i]
			}
		}
		rows = append(rows, NewRow(line, values))
	}
	return rows, nil
}

func readYAML(r io.Reader, key string) ([]Row, error) {
	var doc map[string][]map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing yaml table: %w", err)
	}
	items, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("yaml table: missing top-level key %q", key)
	}
	rows := make([]Row, 0, len(items))
	for i, item := range items {
		values := make(map[string]string, len(item))
		for k, v := range item {
			if v == nil {
				continue
			}
			values[k] = fmt.Sprint(v)
		}
		rows = append(rows, NewRow(i+1, values))
	}
	return rows, nil
}
