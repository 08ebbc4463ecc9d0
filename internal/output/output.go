// Package output writes a profiling run to disk as a bundle of report files
// described by manifest.json.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/csvprof/internal/chart"
	"github.com/KaramelBytes/csvprof/internal/utils"
)

const (
	ManifestFileName = "manifest.json"
	JSONFileName     = "profiling_report.json"
	MarkdownFileName = "profiling_report.md"
	PDFFileName      = "profiling_report.pdf"
	ChartsDirName    = "charts"
	ChartsPageName   = "charts.html"
)

// Bundle is everything produced by one run. Empty artifacts are skipped.
type Bundle struct {
	Source   string
	JSON     []byte
	Markdown string
	PDF      []byte
	Charts   []chart.Image
	HTML     []byte
}

// Manifest records what a run wrote. Artifact paths are relative to the bundle directory.
type Manifest struct {
	ID        string     `json:"id"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	Artifacts []Artifact `json:"artifacts"`
}

// Artifact is a single written file.
type Artifact struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
	Bytes int    `json:"bytes"`
}

// Write stores the bundle under dir and returns its manifest. Every file is
// written atomically; an existing bundle in dir is overwritten.
func Write(dir string, b Bundle) (*Manifest, error) {
	if b.JSON == nil {
		return nil, errors.New("bundle has no JSON report")
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	m := &Manifest{ID: uuid.NewString(), Source: b.Source, CreatedAt: time.Now().UTC()}

	put := func(kind, rel, title string, data []byte) error {
		if err := utils.SafeWriteFile(filepath.Join(dir, rel), data); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		m.Artifacts = append(m.Artifacts, Artifact{Kind: kind, Path: filepath.ToSlash(rel), Title: title, Bytes: len(data)})
		return nil
	}

	if err := put("json", JSONFileName, "", b.JSON); err != nil {
		return nil, err
	}
	if err := put("markdown", MarkdownFileName, "", []byte(b.Markdown)); err != nil {
		return nil, err
	}
	if len(b.PDF) > 0 {
		if err := put("pdf", PDFFileName, "", b.PDF); err != nil {
			return nil, err
		}
	}
	if len(b.Charts) > 0 {
		if err := utils.EnsureDir(filepath.Join(dir, ChartsDirName)); err != nil {
			return nil, fmt.Errorf("ensure charts dir: %w", err)
		}
		for _, img := range b.Charts {
			if err := put("chart", filepath.Join(ChartsDirName, img.Name), img.Title, img.PNG); err != nil {
				return nil, err
			}
		}
	}
	if len(b.HTML) > 0 {
		if err := put("html", ChartsPageName, "", b.HTML); err != nil {
			return nil, err
		}
	}

	data, err := utils.PrettyJSON(m)
	if err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFile(filepath.Join(dir, ManifestFileName), data); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

// LoadManifest reads manifest.json from dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Paths returns the artifact paths joined with dir, in write order.
func (m *Manifest) Paths(dir string) []string {
	out := make([]string, len(m.Artifacts))
	for i, a := range m.Artifacts {
		out[i] = filepath.Join(dir, filepath.FromSlash(a.Path))
	}
	return out
}
