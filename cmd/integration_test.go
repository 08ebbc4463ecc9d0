package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/csvprof/internal/output"
)

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	// Reset sticky flags that may persist Changed state across invocations
	f := profileCmd.Flags()
	for _, name := range []string{"output", "delimiter", "null", "decimal", "thousands", "sheet", "bins", "pdf", "charts", "html", "stdout"} {
		if fl := f.Lookup(name); fl != nil {
			fl.Changed = false
		}
	}
	// Reset bound variables
	profOutputDir, profDelimiter, profDecimal, profThousands, profSheet, profStdout = "", "", "", "", "", ""
	profNulls = nil
	profBins = 20
	profPDF, profCharts, profHTML = true, true, false
	cfg = nil

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_ProfileWritesBundle(t *testing.T) {
	home := isolateHome(t)
	src := writeCSV(t, home, "sample.csv", "a,b\n1,x\n,y\n3,\n")
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "profile", src, "-o", outDir, "--bins", "5", "--html", "--stdout", "json")
	if !strings.Contains(out, "=== PROFILING COMPLETE ===") {
		t.Fatalf("missing completion banner:\n%s", out)
	}
	if !strings.Contains(out, `"dataset_info"`) {
		t.Fatalf("expected JSON on stdout:\n%s", out)
	}

	m, err := output.LoadManifest(outDir)
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Source != src {
		t.Fatalf("manifest source = %s", m.Source)
	}
	for _, rel := range []string{"profiling_report.json", "profiling_report.md", "profiling_report.pdf", "charts/missing_values.png", "charts/hist_a.png", "charts.html"} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Fatalf("expected %s: %v", rel, err)
		}
	}

	b, err := os.ReadFile(filepath.Join(outDir, "profiling_report.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("report json: %v", err)
	}
	for _, k := range []string{"dataset_info", "descriptive_statistics", "missing_value_analysis"} {
		if _, ok := doc[k]; !ok {
			t.Fatalf("report lacks %s", k)
		}
	}
}

func TestCLI_ProfileCoreOnlyWithOptions(t *testing.T) {
	home := isolateHome(t)
	src := writeCSV(t, home, "semi.txt", "price;label\n\"1,5\";a\nNA;b\n")
	outDir := filepath.Join(home, "core")

	out := runCmd(t, "profile", src, "-o", outDir, "--delimiter", ";", "--decimal", "comma", "--null", "NA", "--pdf=false", "--charts=false", "--stdout", "md")
	if !strings.Contains(out, "- `price` : Float64") {
		t.Fatalf("locale parsing not applied:\n%s", out)
	}
	if !strings.Contains(out, "- `price`: 1 missing (50.00%)") {
		t.Fatalf("null token not applied:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "profiling_report.pdf")); !os.IsNotExist(err) {
		t.Fatalf("pdf should not be written")
	}
	if _, err := os.Stat(filepath.Join(outDir, "charts")); !os.IsNotExist(err) {
		t.Fatalf("charts should not be written")
	}
}

func TestCLI_ProfileTableOutput(t *testing.T) {
	home := isolateHome(t)
	src := writeCSV(t, home, "t.csv", "n\n1\n2\n")
	out := runCmd(t, "profile", src, "-o", filepath.Join(home, "t"), "--pdf=false", "--charts=false", "--stdout", "table")
	if !strings.Contains(out, "INT64") && !strings.Contains(out, "Int64") {
		t.Fatalf("expected table output:\n%s", out)
	}
}

func TestCLI_ProfileErrors(t *testing.T) {
	home := isolateHome(t)
	bad := writeCSV(t, home, "dup.csv", "a,a\n1,2\n")
	if _, err := execCmd("profile", bad, "-o", filepath.Join(home, "x")); err == nil || !strings.Contains(err.Error(), "duplicate column name") {
		t.Fatalf("expected duplicate column error, got %v", err)
	}
	if _, err := execCmd("profile", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	good := writeCSV(t, home, "ok.csv", "a\n1\n")
	if _, err := execCmd("profile", good, "--stdout", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported --stdout")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "histogram_bins", "9")
	runCmd(t, "config", "set", "null_values", "NA,-")

	if _, err := os.Stat(filepath.Join(home, ".csvprof", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "histogram_bins: 9") || !strings.Contains(out, "null_values: NA,-") {
		t.Fatalf("config show output:\n%s", out)
	}
	if _, err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
