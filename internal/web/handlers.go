package web

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/pipeline"
)

type figure struct {
	Title string
	Src   template.URL
}

type download struct {
	Label    string
	FileName string
	Href     template.URL
}

type reportPage struct {
	Source    string
	Rows      int
	Columns   int
	Body      template.HTML
	Figures   []figure
	Downloads []download
}

func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK, "index.html", gin.H{"MaxUploadMB": s.maxUpload >> 20})
}

func (s *Server) handleReport(c *gin.Context) {
	name, res, err := s.run(c, pipeline.Options{Bins: s.bins, Charts: s.charts, PDF: true})
	if err != nil {
		status := s.errorStatus(c, err)
		s.render(c, status, "index.html", gin.H{"Error": err.Error(), "MaxUploadMB": s.maxUpload >> 20})
		return
	}
	page := reportPage{
		Source:  name,
		Rows:    res.Report.DatasetInfo.Rows,
		Columns: res.Report.DatasetInfo.Columns,
		Body:    template.HTML(markdownToHTML(res.Markdown)),
	}
	for _, img := range res.Charts {
		page.Figures = append(page.Figures, figure{Title: img.Title, Src: dataURI("image/png", img.PNG)})
	}
	page.Downloads = []download{
		{Label: "JSON report", FileName: "profiling_report.json", Href: dataURI("application/json", res.JSON)},
		{Label: "Markdown report", FileName: "profiling_report.md", Href: dataURI("text/markdown", []byte(res.Markdown))},
		{Label: "PDF report", FileName: "profiling_report.pdf", Href: dataURI("application/pdf", res.PDF)},
	}
	s.render(c, http.StatusOK, "report.html", page)
}

func (s *Server) handleProfileJSON(c *gin.Context) {
	_, res, err := s.run(c, pipeline.Options{})
	if err != nil {
		s.abort(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.JSON)
}

func (s *Server) handleProfileMarkdown(c *gin.Context) {
	_, res, err := s.run(c, pipeline.Options{})
	if err != nil {
		s.abort(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(res.Markdown))
}

func (s *Server) handleProfilePDF(c *gin.Context) {
	name, res, err := s.run(c, pipeline.Options{Bins: s.bins, Charts: s.charts, PDF: true})
	if err != nil {
		s.abort(c, err)
		return
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": stem + "_profiling_report.pdf",
	}))
	c.Data(http.StatusOK, "application/pdf", res.PDF)
}

// run reads the upload (multipart field "file" or a raw request body), loads
// it and runs the pipeline. Query parameters delimiter, null and bins
// override the configured parsing options.
func (s *Server) run(c *gin.Context, opt pipeline.Options) (string, *pipeline.Result, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	name, data, err := s.readUpload(c)
	if err != nil {
		return "", nil, err
	}
	if !dataset.Supported(name) {
		return "", nil, uploadError{fmt.Errorf("unsupported file type %q (want .csv, .tsv, .txt or .xlsx)", filepath.Ext(name))}
	}
	dopt := s.dataset
	if d := c.Query("delimiter"); d != "" {
		r := []rune(d)
		if d == "tab" || d == `\t` {
			r = []rune{'\t'}
		}
		if len(r) != 1 {
			return "", nil, uploadError{errors.New("delimiter must be a single character")}
		}
		dopt.Delimiter = r[0]
	}
	if nulls := c.QueryArray("null"); len(nulls) > 0 {
		dopt.NullValues = append(append([]string(nil), dopt.NullValues...), nulls...)
	}
	if b, err := strconv.Atoi(c.Query("bins")); err == nil && b > 0 {
		opt.Bins = b
	}

	ds, err := dataset.Load(bytes.NewReader(data), name, dopt)
	if err != nil {
		return "", nil, err
	}
	res, err := pipeline.Run(ds, opt)
	if err != nil {
		return "", nil, err
	}
	s.log.WithFields(logrus.Fields{
		"source":  name,
		"rows":    ds.Rows(),
		"columns": len(ds.Columns),
	}).Debug("profiled upload")
	return name, res, nil
}

func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, uploadError{err}
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, uploadError{err}
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, uploadError{err}
		}
		return filepath.Base(fh.Filename), data, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", nil, uploadError{err}
	}
	name := c.DefaultQuery("name", "upload.csv")
	return filepath.Base(name), data, nil
}

type uploadError struct{ err error }

func (e uploadError) Error() string { return "upload: " + e.err.Error() }
func (e uploadError) Unwrap() error { return e.err }

func (s *Server) errorStatus(c *gin.Context, err error) int {
	var maxErr *http.MaxBytesError
	var pe *dataset.ParseError
	var ue uploadError
	switch {
	case errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &pe), errors.As(err, &ue):
		return http.StatusBadRequest
	default:
		_ = c.Error(err)
		return http.StatusInternalServerError
	}
}

func (s *Server) abort(c *gin.Context, err error) {
	status := s.errorStatus(c, err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// markdownToHTML renders report Markdown. Column names are user data, so raw
// HTML is dropped and links are restricted to safe schemes.
func markdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink})
	return markdown.ToHTML([]byte(md), p, r)
}

func dataURI(mime string, data []byte) template.URL {
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data))
}
