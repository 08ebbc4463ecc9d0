package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt64
	KindFloat64
)

// String returns the type name used in reports.
func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "Int64"
	case KindFloat64:
		return "Float64"
	default:
		return "String"
	}
}

// Numeric reports whether statistics are computed for the kind.
func (k Kind) Numeric() bool { return k == KindInt64 || k == KindFloat64 }

// Options controls how raw tabular input becomes a Dataset.
type Options struct {
	// Delimiter for CSV. If 0, '\t' is used for .tsv files and ',' otherwise.
	Delimiter rune
	// NullValues lists extra tokens treated as null. Empty fields are always null.
	NullValues []string
	// Numeric parsing locale. Separators are only honoured when set explicitly.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects the XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{}
}

// Value is a single cell. Num is only meaningful for numeric columns.
type Value struct {
	Raw  string
	Num  float64
	Null bool
}

// Column is a named, typed sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NullCount returns the number of null entries.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Numbers returns the non-null values of a numeric column in row order.
// It returns nil for non-numeric columns.
func (c *Column) Numbers() []float64 {
	if !c.Kind.Numeric() {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Null {
			out = append(out, v.Num)
		}
	}
	return out
}

// Dataset is an in-memory table of equally sized columns with unique names.
type Dataset struct {
	Name    string
	Columns []Column
}

// Rows returns the number of rows.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

// NumericColumns returns the numeric columns in dataset order.
func (d *Dataset) NumericColumns() []*Column {
	var out []*Column
	for i := range d.Columns {
		if d.Columns[i].Kind.Numeric() {
			out = append(out, &d.Columns[i])
		}
	}
	return out
}

// New builds a Dataset from a header and raw records, applying the null policy
// and type inference. Records shorter than the header are padded with nulls.
// Errors assume the header is line 1 and records follow without gaps.
func New(name string, header []string, records [][]string, opt Options) (*Dataset, error) {
	return build(name, header, records, nil, opt)
}

// build is New with source positions: lines[0] is the header line and
// lines[i+1] the line of records[i]. A nil lines means consecutive lines.
func build(name string, header []string, records [][]string, lines []int, opt Options) (*Dataset, error) {
	lineOf := func(i int) int {
		if lines == nil {
			return i + 1
		}
		return lines[i]
	}
	ncol := len(header)
	if ncol == 0 {
		return nil, &ParseError{Source: name, Line: lineOf(0), Err: ErrEmptyInput}
	}
	nulls := make(map[string]struct{}, len(opt.NullValues))
	for _, t := range opt.NullValues {
		nulls[t] = struct{}{}
	}

	ds := &Dataset{Name: name, Columns: make([]Column, ncol)}
	seen := make(map[string]int, ncol)
	for i, h := range header {
		hn := strings.TrimSpace(h)
		if hn == "" {
			hn = fmt.Sprintf("column_%d", i+1)
		}
		if prev, dup := seen[hn]; dup {
			return nil, &ParseError{Source: name, Line: lineOf(0), Err: fmt.Errorf("duplicate column name %q (columns %d and %d)", hn, prev+1, i+1)}
		}
		seen[hn] = i
		ds.Columns[i] = Column{Name: hn, Values: make([]Value, len(records))}
	}

	for r, rec := range records {
		if len(rec) > ncol {
			return nil, &ParseError{Source: name, Line: lineOf(r + 1), Err: fmt.Errorf("row has %d fields, header has %d", len(rec), ncol)}
		}
		for j := 0; j < ncol; j++ {
			raw := ""
			if j < len(rec) {
				raw = strings.TrimSpace(rec[j])
			}
			_, isNull := nulls[raw]
			ds.Columns[j].Values[r] = Value{Raw: raw, Null: raw == "" || isNull}
		}
	}

	for j := range ds.Columns {
		inferKind(&ds.Columns[j], opt)
	}
	return ds, nil
}

// inferKind types a column as Int64 or Float64 when every non-null value parses,
// and String otherwise. All-null columns stay String.
func inferKind(c *Column, opt Options) {
	allInt, allFloat, present := true, true, false
	for _, v := range c.Values {
		if v.Null {
			continue
		}
		present = true
		if allInt {
			if _, ok := parseInt(v.Raw, opt); !ok {
				allInt = false
			}
		}
		if _, ok := parseFloat(v.Raw, opt); !ok {
			allFloat = false
			break
		}
	}
	switch {
	case !present:
		c.Kind = KindString
	case allInt:
		c.Kind = KindInt64
		for i := range c.Values {
			if !c.Values[i].Null {
				n, _ := parseInt(c.Values[i].Raw, opt)
				c.Values[i].Num = float64(n)
			}
		}
	case allFloat:
		c.Kind = KindFloat64
		for i := range c.Values {
			if !c.Values[i].Null {
				c.Values[i].Num, _ = parseFloat(c.Values[i].Raw, opt)
			}
		}
	default:
		c.Kind = KindString
	}
}

func normalizeNumber(s string, opt Options) string {
	raw := strings.TrimSpace(s)
	if thou := opt.ThousandsSeparator; thou != 0 && thou != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec := opt.DecimalSeparator; dec != 0 && dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return raw
}

func parseInt(s string, opt Options) (int64, bool) {
	n, err := strconv.ParseInt(normalizeNumber(s, opt), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseFloat(s string, opt Options) (float64, bool) {
	raw := normalizeNumber(s, opt)
	// ParseFloat accepts "NaN", "Inf" and hex floats; none of them are numeric data here.
	if strings.ContainsAny(raw, "xXnN") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
