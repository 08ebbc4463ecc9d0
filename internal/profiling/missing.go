package profiling

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KaramelBytes/csvprof/internal/dataset"
)

// MissingValueReport is the null count of a column and its share of all rows.
type MissingValueReport struct {
	MissingCount      int     `json:"missing_count"`
	MissingPercentage float64 `json:"missing_percentage"`
}

// UnmarshalJSON accepts only the canonical {missing_count, missing_percentage} object.
func (r *MissingValueReport) UnmarshalJSON(b []byte) error {
	var aux struct {
		MissingCount      *int     `json:"missing_count"`
		MissingPercentage *float64 `json:"missing_percentage"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&aux); err != nil {
		return fmt.Errorf("missing value report: %w", err)
	}
	if aux.MissingCount == nil || aux.MissingPercentage == nil {
		return errors.New("missing value report: missing_count and missing_percentage are required")
	}
	if *aux.MissingCount < 0 || *aux.MissingPercentage < 0 || *aux.MissingPercentage > 100 {
		return fmt.Errorf("missing value report: out of range (%d, %g)", *aux.MissingCount, *aux.MissingPercentage)
	}
	r.MissingCount = *aux.MissingCount
	r.MissingPercentage = *aux.MissingPercentage
	return nil
}

// AnalyzeMissing reports null counts for every column in dataset order.
// With zero rows every percentage is 0.
func AnalyzeMissing(ds *dataset.Dataset) OrderedMap[MissingValueReport] {
	var out OrderedMap[MissingValueReport]
	rows := ds.Rows()
	for i := range ds.Columns {
		n := ds.Columns[i].NullCount()
		out.Set(ds.Columns[i].Name, MissingValueReport{
			MissingCount:      n,
			MissingPercentage: percentage(n, rows),
		})
	}
	return out
}

func percentage(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
