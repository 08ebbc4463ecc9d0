// Package chart renders report charts as PNG images and an interactive HTML page.
// Every call builds its own chart value and buffer.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/profiling"
)

// DefaultBins is the histogram bin count used when none is configured.
const DefaultBins = 20

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

// Image is a rendered chart with its caption and file name.
type Image struct {
	Title string `json:"title"`
	Name  string `json:"name"`
	PNG   []byte `json:"-"`
}

// MissingBar draws one bar per column with its missing value count.
func MissingBar(missing profiling.OrderedMap[profiling.MissingValueReport]) ([]byte, error) {
	if missing.Len() == 0 {
		return nil, ErrNoData
	}
	var bars []gochart.Value
	maxCount := 0.0
	missing.Each(func(col string, m profiling.MissingValueReport) {
		bars = append(bars, gochart.Value{Label: col, Value: float64(m.MissingCount)})
		maxCount = math.Max(maxCount, float64(m.MissingCount))
	})

	graph := gochart.BarChart{
		Title:      "Missing Values per Column",
		Width:      max(640, len(bars)*60+160),
		Height:     480,
		BarWidth:   40,
		BarSpacing: 20,
		Background: gochart.Style{
			Padding:   gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 40},
			FillColor: drawing.ColorWhite,
		},
		XAxis: gochart.Style{StrokeWidth: 1, StrokeColor: gochart.ColorBlack},
		YAxis: gochart.YAxis{
			Name: "Missing Count",
			// all-zero counts would give an empty range
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(1, maxCount*1.1)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render missing value chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Images renders the missing value chart followed by one histogram per numeric column.
func Images(report *profiling.ProfilingReport, ds *dataset.Dataset, bins int) ([]Image, error) {
	bar, err := MissingBar(report.Missing)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, err
	}
	var out []Image
	if bar != nil {
		out = append(out, Image{Title: "Missing Values per Column", Name: "missing_values.png", PNG: bar})
	}
	hists, err := Histograms(ds, bins)
	if err != nil {
		return nil, err
	}
	return append(out, hists...), nil
}
