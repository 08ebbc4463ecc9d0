package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg" // png writer

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/utils"
)

// Histogram draws the distribution of values. bins <= 0 means DefaultBins.
func Histogram(name string, values []float64, bins int) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	p := plot.New()
	p.Title.Text = "Distribution of " + name
	p.X.Label.Text = name
	p.Y.Label.Text = "Frequency"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)

	w, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Histograms renders a histogram for every numeric column that has at least
// one value. File names are unique slugs of the column names.
func Histograms(ds *dataset.Dataset, bins int) ([]Image, error) {
	var out []Image
	used := map[string]int{}
	for _, c := range ds.NumericColumns() {
		values := c.Numbers()
		if len(values) == 0 {
			continue
		}
		png, err := Histogram(c.Name, values, bins)
		if err != nil {
			return nil, err
		}
		slug := utils.Slug(c.Name, "column")
		used[slug]++
		if n := used[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		out = append(out, Image{
			Title: "Distribution of " + c.Name,
			Name:  "hist_" + slug + ".png",
			PNG:   png,
		})
	}
	return out, nil
}
