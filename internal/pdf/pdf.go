// Package pdf lays out a Markdown report and its charts as a PDF document.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"strings"

	"github.com/gosimple/unidecode"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/KaramelBytes/csvprof/internal/chart"
)

// Options controls page geometry and type sizes. Lengths are in points.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64

	TitleSize   float64
	HeadingSize float64
	BodySize    float64

	// Image bounds as a fraction of the content area.
	MaxImageWidth  float64
	MaxImageHeight float64
}

// DefaultOptions returns an A4 portrait layout with 50pt margins.
func DefaultOptions() Options {
	return Options{
		PageWidth:      595.28,
		PageHeight:     841.89,
		Margin:         50,
		TitleSize:      20,
		HeadingSize:    13,
		BodySize:       10,
		MaxImageWidth:  0.85,
		MaxImageHeight: 0.60,
	}
}

type style int

const (
	styleBody style = iota
	styleHeading
	styleTitle
)

type writer struct {
	c     *vgpdf.Canvas
	opt   Options
	faces map[style]font.Face
	y     vg.Length
}

// Render draws markdown line by line, then each image on its own page with a
// "Figure i: <title>" caption.
func Render(markdown string, images []chart.Image, opt Options) ([]byte, error) {
	if opt.PageWidth <= 0 || opt.PageHeight <= 0 {
		opt = DefaultOptions()
	}
	fonts := font.NewCache(liberation.Collection())
	sans := font.Font{Typeface: "Liberation", Variant: "Sans"}
	// vgpdf registers every face under the regular style, so headings use
	// the regular serif face instead of a bold weight.
	serif := font.Font{Typeface: "Liberation", Variant: "Serif", Weight: xfont.WeightNormal}

	w := &writer{
		c:   vgpdf.New(vg.Points(opt.PageWidth), vg.Points(opt.PageHeight)),
		opt: opt,
		faces: map[style]font.Face{
			styleTitle:   fonts.Lookup(serif, vg.Points(opt.TitleSize)),
			styleHeading: fonts.Lookup(serif, vg.Points(opt.HeadingSize)),
			styleBody:    fonts.Lookup(sans, vg.Points(opt.BodySize)),
		},
	}
	w.c.SetColor(color.Black)
	w.y = w.top()

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, " ")
		switch {
		case line == "":
			w.space(0.5)
		case strings.HasPrefix(line, "# "):
			w.paragraph(styleTitle, line[2:])
			w.space(0.5)
		case strings.HasPrefix(line, "## "):
			w.space(0.5)
			w.paragraph(styleHeading, line[3:])
		case strings.HasPrefix(line, "### "):
			w.paragraph(styleHeading, line[4:])
		default:
			w.paragraph(styleBody, line)
		}
	}

	for i, img := range images {
		if err := w.figure(i+1, img); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := w.c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *writer) top() vg.Length    { return vg.Points(w.opt.PageHeight - w.opt.Margin) }
func (w *writer) bottom() vg.Length { return vg.Points(w.opt.Margin) }
func (w *writer) width() vg.Length  { return vg.Points(w.opt.PageWidth - 2*w.opt.Margin) }
func (w *writer) height() vg.Length { return vg.Points(w.opt.PageHeight - 2*w.opt.Margin) }

func (w *writer) newPage() {
	w.c.NextPage()
	w.c.SetColor(color.Black)
	w.y = w.top()
}

func (w *writer) lineHeight(s style) vg.Length {
	face := w.faces[s]
	return face.Extents().Height * 1.2
}

func (w *writer) space(lines float64) {
	w.y -= w.lineHeight(styleBody) * vg.Length(lines)
}

// paragraph writes text wrapped to the content width, breaking pages as needed.
func (w *writer) paragraph(s style, text string) {
	face := w.faces[s]
	lh := w.lineHeight(s)
	for _, line := range wrap(face, plain(text), w.width()) {
		if w.y-lh < w.bottom() {
			w.newPage()
		}
		w.y -= lh
		w.c.FillString(face, vg.Point{X: vg.Points(w.opt.Margin), Y: w.y + face.Extents().Descent}, line)
	}
}

func (w *writer) figure(n int, img chart.Image) error {
	decoded, _, err := image.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		return fmt.Errorf("decode %s: %w", img.Name, err)
	}
	w.newPage()

	b := decoded.Bounds()
	iw, ih := vg.Length(b.Dx()), vg.Length(b.Dy())
	maxW := w.width() * vg.Length(w.opt.MaxImageWidth)
	maxH := w.height() * vg.Length(w.opt.MaxImageHeight)
	scale := min(maxW/iw, maxH/ih)
	dw, dh := iw*scale, ih*scale

	x := vg.Points(w.opt.Margin) + (w.width()-dw)/2
	w.c.DrawImage(vg.Rectangle{
		Min: vg.Point{X: x, Y: w.y - dh},
		Max: vg.Point{X: x + dw, Y: w.y},
	}, decoded)
	w.y -= dh + w.lineHeight(styleBody)

	w.paragraph(styleBody, fmt.Sprintf("Figure %d: %s", n, img.Title))
	return nil
}

// plain drops Markdown emphasis and code markers and transliterates to ASCII,
// which is all the embedded PDF font encoding can show.
func plain(s string) string {
	s = strings.NewReplacer("**", "", "`", "").Replace(s)
	if len(s) > 1 && strings.HasPrefix(s, "_") && strings.HasSuffix(s, "_") {
		s = s[1 : len(s)-1]
	}
	return unidecode.Unidecode(s)
}

func wrap(face font.Face, text string, width vg.Length) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, word := range words[1:] {
		if face.Width(cur+" "+word) <= width {
			cur += " " + word
			continue
		}
		lines = append(lines, cur)
		cur = word
	}
	return append(lines, cur)
}
