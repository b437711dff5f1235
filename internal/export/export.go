// Package export renders a stored table as CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/treescan/api"
)

// Format names an output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. The empty string selects FormatCSV.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q", name)
	}
}

// Source is a readable table. *store.Reader satisfies it.
type Source interface {
	Columns() ([]api.Column, error)
	Each(fn func(row map[string]any) error) error
}

// Options configures Export.
type Options struct {
	Format Format
	// Filter is a JSONPath expression applied to the array of records, e.g.
	// `$[?(@.sub_hidden == true)]`. Empty selects every record.
	Filter string
}

// Export writes the records of src to w and returns the number written.
func Export(src Source, w io.Writer, opts Options) (int, error) {
	cols, err := src.Columns()
	if err != nil {
		return 0, err
	}

	var filter jp.Expr
	if opts.Filter != "" {
		if filter, err = jp.ParseString(opts.Filter); err != nil {
			return 0, fmt.Errorf("invalid filter %q: %w", opts.Filter, err)
		}
	}

	switch opts.Format {
	case "", FormatCSV:
		if filter == nil {
			return streamCSV(src, cols, w)
		}
		records, err := selected(src, filter)
		if err != nil {
			return 0, err
		}
		return writeCSV(records, cols, w)
	case FormatJSON:
		records, err := selected(src, filter)
		if err != nil {
			return 0, err
		}
		if err := oj.Write(w, records, &oj.Options{Indent: 2, Sort: true}); err != nil {
			return 0, fmt.Errorf("write json: %w", err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return 0, fmt.Errorf("write json: %w", err)
		}
		return len(records), nil
	default:
		return 0, fmt.Errorf("unknown export format %q", opts.Format)
	}
}

// selected loads every record and applies filter, if any.
func selected(src Source, filter jp.Expr) ([]any, error) {
	var records []any
	err := src.Each(func(row map[string]any) error {
		records = append(records, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if filter == nil {
		if records == nil {
			records = []any{}
		}
		return records, nil
	}
	matched := filter.Get(records)
	if matched == nil {
		matched = []any{}
	}
	return matched, nil
}

func streamCSV(src Source, cols []api.Column, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(cols)); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	var n int
	err := src.Each(func(row map[string]any) error {
		n++
		return cw.Write(record(cols, row))
	})
	if err != nil {
		return n, fmt.Errorf("write csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("write csv: %w", err)
	}
	return n, nil
}

func writeCSV(records []any, cols []api.Column, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(cols)); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range records {
		row, ok := r.(map[string]any)
		if !ok {
			return i, fmt.Errorf("filter selected a %T, csv needs whole records", r)
		}
		if err := cw.Write(record(cols, row)); err != nil {
			return i, fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(records), fmt.Errorf("write csv: %w", err)
	}
	return len(records), nil
}

func header(cols []api.Column) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.Label
	}
	return h
}

func record(cols []api.Column, row map[string]any) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = format(row[c.Name])
	}
	return out
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	default:
		return oj.JSON(x)
	}
}
