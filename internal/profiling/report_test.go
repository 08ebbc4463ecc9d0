package profiling

import (
	"encoding/json"
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/csvprof/internal/dataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func mustDataset(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader(csv), "test.csv", dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return ds
}

const scenarioCSV = "a,b\n1,x\n,y\n3,\n"

func TestProfileScenario(t *testing.T) {
	rep := Profile(mustDataset(t, scenarioCSV))

	if rep.DatasetInfo.Rows != 3 || rep.DatasetInfo.Columns != 2 {
		t.Fatalf("dataset info = %+v", rep.DatasetInfo)
	}
	if got := strings.Join(rep.DatasetInfo.Schema.Keys(), ","); got != "a,b" {
		t.Fatalf("schema order = %s", got)
	}
	if got := strings.Join(rep.Statistics.Keys(), ","); got != "a" {
		t.Fatalf("statistics keys = %s, want only a", got)
	}
	a, _ := rep.Statistics.Get("a")
	if *a.Mean != 2 || *a.Min != 1 || *a.Max != 3 {
		t.Fatalf("stats a = mean %v min %v max %v", *a.Mean, *a.Min, *a.Max)
	}
	if math.Abs(*a.Std-math.Sqrt2) > 1e-12 {
		t.Fatalf("std = %v, want sample std %v", *a.Std, math.Sqrt2)
	}
	for _, col := range []string{"a", "b"} {
		m, ok := rep.Missing.Get(col)
		if !ok {
			t.Fatalf("missing analysis lacks %s", col)
		}
		if m.MissingCount != 1 || math.Abs(m.MissingPercentage-100.0/3) > 1e-9 {
			t.Fatalf("missing %s = %+v", col, m)
		}
	}
}

func TestMarkdownScenario(t *testing.T) {
	want := strings.Join([]string{
		"# Dataset Profiling Report",
		"",
		"## Dataset Overview",
		"",
		"- **Rows:** 3",
		"- **Columns:** 2",
		"",
		"### Schema",
		"",
		"- `a` : Int64",
		"- `b` : String",
		"",
		"## Descriptive Statistics",
		"",
		"### `a`",
		"",
		"- **Mean**: 2.0",
		"- **Min**: 1",
		"- **Max**: 3",
		"- **Std**: 1.4142",
		"",
		"## Missing Value Analysis",
		"",
		"- `a`: 1 missing (33.33%)",
		"",
		"- `b`: 1 missing (33.33%)",
		"",
	}, "\n")
	got := Profile(mustDataset(t, scenarioCSV)).Markdown()
	if got != want {
		t.Fatalf("markdown mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestMarkdownNoNumericColumns(t *testing.T) {
	md := Profile(mustDataset(t, "name,city\nann,paris\nbob,\n")).Markdown()
	if !strings.Contains(md, "_No numeric columns found._") {
		t.Fatalf("expected no-numeric marker:\n%s", md)
	}
	if strings.Contains(md, "### `name`") {
		t.Fatalf("text column must not get a statistics heading:\n%s", md)
	}
}

func TestMarkdownStatisticHeadings(t *testing.T) {
	md := Profile(mustDataset(t, "x,y,z\n1,2.5,a\n2,3.5,b\n")).Markdown()
	stats := md[strings.Index(md, "## Descriptive Statistics"):strings.Index(md, "## Missing Value Analysis")]
	if n := strings.Count(stats, "\n### "); n != 2 {
		t.Fatalf("headings = %d, want 2:\n%s", n, stats)
	}
	if !strings.Contains(stats, "- **Mean**: 3.0") || !strings.Contains(stats, "- **Min**: 2.5") {
		t.Fatalf("float formatting:\n%s", stats)
	}
}

func TestMarkdownUndefinedStatistics(t *testing.T) {
	// a single value has no sample deviation
	md := Profile(mustDataset(t, "v\n7\n\n")).Markdown()
	if !strings.Contains(md, "- **Std**: N/A") {
		t.Fatalf("expected N/A std:\n%s", md)
	}
	if !strings.Contains(md, "- **Mean**: 7.0") || !strings.Contains(md, "- **Min**: 7") {
		t.Fatalf("single-value stats:\n%s", md)
	}
}

func TestZeroRows(t *testing.T) {
	rep := Profile(mustDataset(t, "a,b\n"))
	if rep.DatasetInfo.Rows != 0 || rep.DatasetInfo.Columns != 2 {
		t.Fatalf("info = %+v", rep.DatasetInfo)
	}
	if rep.Statistics.Len() != 0 {
		t.Fatalf("zero-row columns are untyped text; statistics = %v", rep.Statistics.Keys())
	}
	rep.Missing.Each(func(col string, m MissingValueReport) {
		if m.MissingCount != 0 || m.MissingPercentage != 0 {
			t.Fatalf("missing %s = %+v, want zero", col, m)
		}
	})
	md := rep.Markdown()
	if !strings.Contains(md, "- `a`: 0 missing (0.00%)") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestDescribeMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 2; n < 40; n += 5 {
		x := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()*10 + 3
		}
		s := Describe(x)
		mean, std := stat.MeanStdDev(x, nil)
		if math.Abs(*s.Mean-mean) > 1e-9 || math.Abs(*s.Std-std) > 1e-9 {
			t.Fatalf("n=%d: got mean %v std %v, gonum %v %v", n, *s.Mean, *s.Std, mean, std)
		}
		if *s.Min != floats.Min(x) || *s.Max != floats.Max(x) {
			t.Fatalf("n=%d: min/max mismatch", n)
		}
	}
	if s := Describe(nil); s.Mean != nil || s.Min != nil || s.Max != nil || s.Std != nil {
		t.Fatalf("empty input should leave every statistic undefined: %+v", s)
	}
}

// randomCSV builds a dataset with a mix of integer, float and text columns and
// roughly 20% nulls.
func randomCSV(rng *rand.Rand, rows int) string {
	var b strings.Builder
	b.WriteString("i,f,s\n")
	cell := func(v string) string {
		if rng.Intn(5) == 0 {
			return ""
		}
		return v
	}
	for r := 0; r < rows; r++ {
		b.WriteString(cell(strconv.Itoa(rng.Intn(200) - 100)))
		b.WriteByte(',')
		b.WriteString(cell(strconv.FormatFloat(rng.Float64()*1e3, 'f', 3, 64)))
		b.WriteByte(',')
		b.WriteString(cell("w" + strconv.Itoa(rng.Intn(9))))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestReportProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		ds := mustDataset(t, randomCSV(rng, rng.Intn(30)))
		rep := Profile(ds)

		if rep.DatasetInfo.Rows != ds.Rows() || rep.DatasetInfo.Columns != len(ds.Columns) {
			t.Fatalf("dimensions mismatch: %+v", rep.DatasetInfo)
		}
		var names, numeric []string
		for _, c := range ds.Columns {
			names = append(names, c.Name)
			if c.Kind.Numeric() {
				numeric = append(numeric, c.Name)
			}
		}
		if !reflect.DeepEqual(rep.DatasetInfo.Schema.Keys(), names) {
			t.Fatalf("schema keys %v, want %v", rep.DatasetInfo.Schema.Keys(), names)
		}
		if !reflect.DeepEqual(rep.Missing.Keys(), names) {
			t.Fatalf("missing keys %v, want %v", rep.Missing.Keys(), names)
		}
		if got := rep.Statistics.Keys(); len(got) != len(numeric) || (len(got) > 0 && !reflect.DeepEqual(got, numeric)) {
			t.Fatalf("statistics keys %v, want %v", got, numeric)
		}
		rep.Statistics.Each(func(col string, s ColumnStatistics) {
			if s.Min == nil || s.Max == nil {
				return
			}
			if *s.Min > *s.Max {
				t.Fatalf("%s: min %v > max %v", col, *s.Min, *s.Max)
			}
			if *s.Mean < *s.Min-1e-9 || *s.Mean > *s.Max+1e-9 {
				t.Fatalf("%s: mean %v outside [%v, %v]", col, *s.Mean, *s.Min, *s.Max)
			}
		})
		for _, c := range ds.Columns {
			m, _ := rep.Missing.Get(c.Name)
			nonNull := 0
			for _, v := range c.Values {
				if !v.Null {
					nonNull++
				}
			}
			if m.MissingCount+nonNull != ds.Rows() {
				t.Fatalf("%s: missing %d + non-null %d != rows %d", c.Name, m.MissingCount, nonNull, ds.Rows())
			}
			if ds.Rows() > 0 && math.Abs(m.MissingPercentage-100*float64(m.MissingCount)/float64(ds.Rows())) > 1e-9 {
				t.Fatalf("%s: percentage %v", c.Name, m.MissingPercentage)
			}
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	rep := Profile(mustDataset(t, "z,a,m\n1,x,0.5\n,y,\n3,,2.25\n"))
	b, err := rep.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	back, err := ParseReport(b)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if !reflect.DeepEqual(rep, back) {
		t.Fatalf("round trip mismatch:\n%#v\n%#v", rep, back)
	}

	// key order survives encoding
	s := string(b)
	if !(strings.Index(s, `"z"`) < strings.Index(s, `"a"`) && strings.Index(s, `"a"`) < strings.Index(s, `"m"`)) {
		t.Fatalf("schema order lost:\n%s", s)
	}
}

func TestJSONShape(t *testing.T) {
	b, err := Profile(mustDataset(t, "v\n5\n\n")).JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	info := doc["dataset_info"].(map[string]any)
	if info["rows"].(float64) != 1 || info["columns"].(float64) != 1 {
		t.Fatalf("dataset_info = %v", info)
	}
	v := doc["descriptive_statistics"].(map[string]any)["v"].(map[string]any)
	if v["std"] != nil {
		t.Fatalf("std should be null for a single value, got %v", v["std"])
	}
	mv := doc["missing_value_analysis"].(map[string]any)["v"].(map[string]any)
	if mv["missing_count"].(float64) != 0 || mv["missing_percentage"].(float64) != 0 {
		t.Fatalf("missing = %v", mv)
	}
}

func TestParseReportRejectsNonCanonicalMissingShape(t *testing.T) {
	cases := map[string]string{
		"scalar count": `{"dataset_info":{"rows":1,"columns":1,"schema":{"a":"Int64"}},"descriptive_statistics":{},"missing_value_analysis":{"a":3}}`,
		"count key":    `{"dataset_info":{"rows":1,"columns":1,"schema":{"a":"Int64"}},"descriptive_statistics":{},"missing_value_analysis":{"a":{"count":3}}}`,
		"partial":      `{"dataset_info":{"rows":1,"columns":1,"schema":{"a":"Int64"}},"descriptive_statistics":{},"missing_value_analysis":{"a":{"missing_count":1}}}`,
		"no columns":   `{"dataset_info":{"rows":1,"columns":1,"schema":{"a":"Int64"}},"descriptive_statistics":{},"missing_value_analysis":{}}`,
		"no sections":  `{"dataset_info":{"rows":1,"columns":1,"schema":{"a":"Int64"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseReport([]byte(doc)); err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}
}

func TestTable(t *testing.T) {
	out := Profile(mustDataset(t, scenarioCSV)).Table()
	for _, want := range []string{"COLUMN", "MISSING %", "33.33", "1.4142", "String"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
