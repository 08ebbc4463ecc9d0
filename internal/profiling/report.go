package profiling

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KaramelBytes/csvprof/internal/dataset"
)

// ProfilingReport aggregates schema, statistics and missing-value analysis.
type ProfilingReport struct {
	DatasetInfo DatasetInfo                    `json:"dataset_info"`
	Statistics  OrderedMap[ColumnStatistics]   `json:"descriptive_statistics"`
	Missing     OrderedMap[MissingValueReport] `json:"missing_value_analysis"`
}

// Assemble merges the component outputs into a report.
func Assemble(info DatasetInfo, stats OrderedMap[ColumnStatistics], missing OrderedMap[MissingValueReport]) *ProfilingReport {
	return &ProfilingReport{DatasetInfo: info, Statistics: stats, Missing: missing}
}

// Profile runs the whole pipeline over ds.
func Profile(ds *dataset.Dataset) *ProfilingReport {
	return Assemble(Summarize(ds), ComputeStatistics(ds), AnalyzeMissing(ds))
}

// JSON returns the indented JSON form of the report.
func (r *ProfilingReport) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

// ParseReport decodes a report produced by JSON. Entries that do not have the
// canonical shape are rejected.
func ParseReport(b []byte) (*ProfilingReport, error) {
	var raw struct {
		DatasetInfo *DatasetInfo                    `json:"dataset_info"`
		Statistics  *OrderedMap[ColumnStatistics]   `json:"descriptive_statistics"`
		Missing     *OrderedMap[MissingValueReport] `json:"missing_value_analysis"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if raw.DatasetInfo == nil || raw.Statistics == nil || raw.Missing == nil {
		return nil, errors.New("parse report: dataset_info, descriptive_statistics and missing_value_analysis are required")
	}
	rep := &ProfilingReport{DatasetInfo: *raw.DatasetInfo, Statistics: *raw.Statistics, Missing: *raw.Missing}
	if rep.Missing.Len() != rep.DatasetInfo.Schema.Len() {
		return nil, fmt.Errorf("parse report: missing value analysis covers %d columns, schema has %d", rep.Missing.Len(), rep.DatasetInfo.Schema.Len())
	}
	return rep, nil
}
