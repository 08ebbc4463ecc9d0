package chart

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/profiling"
)

// InteractivePage renders a self-contained HTML page with the missing value
// chart and one histogram per numeric column.
func InteractivePage(report *profiling.ProfilingReport, ds *dataset.Dataset, bins int) ([]byte, error) {
	if bins <= 0 {
		bins = DefaultBins
	}
	page := components.NewPage()
	page.SetPageTitle("Dataset Profiling Charts")

	var names []string
	var counts []opts.BarData
	report.Missing.Each(func(col string, m profiling.MissingValueReport) {
		names = append(names, col)
		counts = append(counts, opts.BarData{Value: m.MissingCount})
	})
	missing := charts.NewBar()
	missing.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Missing Values per Column"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Missing Count"}),
	)
	missing.SetXAxis(names).AddSeries("missing", counts)
	page.AddCharts(missing)

	for _, c := range ds.NumericColumns() {
		values := c.Numbers()
		if len(values) == 0 {
			continue
		}
		labels, freq := binCounts(values, bins)
		data := make([]opts.BarData, len(freq))
		for i, f := range freq {
			data[i] = opts.BarData{Value: f}
		}
		h := charts.NewBar()
		h.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Distribution of " + c.Name}),
			charts.WithXAxisOpts(opts.XAxis{Name: c.Name}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
		)
		h.SetXAxis(labels).AddSeries(c.Name, data)
		page.AddCharts(h)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart page: %w", err)
	}
	return buf.Bytes(), nil
}

// binCounts splits values into equal-width bins over [min, max] and returns
// the bin labels and counts. A constant column yields a single bin.
func binCounts(values []float64, bins int) ([]string, []float64) {
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		bins = 1
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the last divider must be strictly greater than the maximum
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, x, nil)

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("[%.4g, %.4g)", dividers[i], dividers[i+1])
	}
	return labels, counts
}
