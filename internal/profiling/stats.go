package profiling

import (
	"math"

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/montanaflynn/stats"
)

// ColumnStatistics holds descriptive statistics of a numeric column.
// A nil field means the statistic is undefined for the column.
type ColumnStatistics struct {
	Mean *float64 `json:"mean"`
	Min  *float64 `json:"min"`
	Max  *float64 `json:"max"`
	Std  *float64 `json:"std"`
}

// ComputeStatistics returns statistics for every numeric column in dataset order.
// Non-numeric columns are not present in the result.
func ComputeStatistics(ds *dataset.Dataset) OrderedMap[ColumnStatistics] {
	var out OrderedMap[ColumnStatistics]
	for _, c := range ds.NumericColumns() {
		out.Set(c.Name, Describe(c.Numbers()))
	}
	return out
}

// Describe computes mean, min, max and the sample standard deviation (N-1)
// of values. Empty input leaves every field nil; a single value leaves Std nil.
func Describe(values []float64) ColumnStatistics {
	var s ColumnStatistics
	if len(values) == 0 {
		return s
	}
	data := stats.Float64Data(values)
	s.Mean = defined(stats.Mean(data))
	s.Min = defined(stats.Min(data))
	s.Max = defined(stats.Max(data))
	if len(values) > 1 {
		s.Std = defined(stats.StandardDeviationSample(data))
	}
	return s
}

func defined(v float64, err error) *float64 {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
