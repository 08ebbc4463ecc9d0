package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the selected worksheet of an XLSX workbook. The first
// non-empty row is the header; fully empty rows are skipped like blank CSV lines.
func ReadXLSX(r io.Reader, name string, opt Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()

	sheet := opt.Sheet
	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, &ParseError{Source: name, Err: ErrEmptyInput}
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("sheet %q not found; available sheets: %s", sheet, strings.Join(sheets, ", "))}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	var header []string
	var records [][]string
	var lines []int
	for i, row := range rows {
		if emptyRow(row) {
			continue
		}
		lines = append(lines, i+1)
		if header == nil {
			header = row
			continue
		}
		records = append(records, row)
	}
	if header == nil {
		return nil, &ParseError{Source: name, Err: errors.Join(ErrEmptyInput, fmt.Errorf("sheet %q has no rows", sheet))}
	}
	return build(name, header, records, lines, opt)
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
