// Package pipeline runs profiling over a loaded dataset and renders the
// requested presentation artifacts.
package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/csvprof/internal/chart"
	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/pdf"
	"github.com/KaramelBytes/csvprof/internal/profiling"
)

// Options selects the artifacts rendered besides JSON and Markdown.
type Options struct {
	Bins   int
	Charts bool
	PDF    bool
	HTML   bool
	Layout pdf.Options
}

// Result carries the report and every rendered artifact.
type Result struct {
	Report   *profiling.ProfilingReport
	JSON     []byte
	Markdown string
	Charts   []chart.Image
	PDF      []byte
	HTML     []byte
}

// Run profiles ds and renders the artifacts enabled in opt. The PDF embeds the
// chart images when charts are enabled.
func Run(ds *dataset.Dataset, opt Options) (*Result, error) {
	rep := profiling.Profile(ds)
	js, err := rep.JSON()
	if err != nil {
		return nil, err
	}
	res := &Result{Report: rep, JSON: js, Markdown: rep.Markdown()}

	if opt.Charts {
		res.Charts, err = chart.Images(rep, ds, opt.Bins)
		if err != nil {
			return nil, fmt.Errorf("render charts: %w", err)
		}
	}
	if opt.PDF {
		layout := opt.Layout
		if layout.PageWidth == 0 {
			layout = pdf.DefaultOptions()
		}
		res.PDF, err = pdf.Render(res.Markdown, res.Charts, layout)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
	}
	if opt.HTML {
		res.HTML, err = chart.InteractivePage(rep, ds, opt.Bins)
		if err != nil {
			return nil, fmt.Errorf("render chart page: %w", err)
		}
	}
	return res, nil
}
