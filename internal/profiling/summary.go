package profiling

import "github.com/KaramelBytes/csvprof/internal/dataset"

// DatasetInfo summarizes the shape and schema of a dataset.
type DatasetInfo struct {
	Rows    int                `json:"rows"`
	Columns int                `json:"columns"`
	Schema  OrderedMap[string] `json:"schema"`
}

// Summarize derives row/column counts and the column→type mapping in column order.
func Summarize(ds *dataset.Dataset) DatasetInfo {
	info := DatasetInfo{Rows: ds.Rows(), Columns: len(ds.Columns)}
	for _, c := range ds.Columns {
		info.Schema.Set(c.Name, c.Kind.String())
	}
	return info
}
