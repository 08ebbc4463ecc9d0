package profiling

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Markdown renders the human-readable report. Section order is fixed:
// overview, schema, descriptive statistics, missing value analysis.
func (r *ProfilingReport) Markdown() string {
	var md []string
	add := func(lines ...string) { md = append(md, lines...) }

	add("# Dataset Profiling Report", "")

	add("## Dataset Overview", "")
	add(fmt.Sprintf("- **Rows:** %d", r.DatasetInfo.Rows))
	add(fmt.Sprintf("- **Columns:** %d", r.DatasetInfo.Columns), "")

	add("### Schema", "")
	r.DatasetInfo.Schema.Each(func(col, typ string) {
		add(fmt.Sprintf("- `%s` : %s", col, typ))
	})
	add("")

	add("## Descriptive Statistics", "")
	if r.Statistics.Len() == 0 {
		add("_No numeric columns found._", "")
	} else {
		r.Statistics.Each(func(col string, s ColumnStatistics) {
			integral := r.isInteger(col)
			add(fmt.Sprintf("### `%s`", col), "")
			add(fmt.Sprintf("- **Mean**: %s", formatStat(s.Mean, false)))
			add(fmt.Sprintf("- **Min**: %s", formatStat(s.Min, integral)))
			add(fmt.Sprintf("- **Max**: %s", formatStat(s.Max, integral)))
			add(fmt.Sprintf("- **Std**: %s", formatStat(s.Std, false)))
			add("")
		})
	}

	add("## Missing Value Analysis", "")
	r.Missing.Each(func(col string, m MissingValueReport) {
		add(fmt.Sprintf("- `%s`: %d missing (%.2f%%)", col, m.MissingCount, m.MissingPercentage), "")
	})

	return strings.Join(md, "\n")
}

// Table renders a console summary with one row per column.
func (r *ProfilingReport) Table() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Type", "Missing", "Missing %", "Mean", "Min", "Max", "Std"})
	r.DatasetInfo.Schema.Each(func(col, typ string) {
		row := table.Row{col, typ, "", "", "", "", "", ""}
		if m, ok := r.Missing.Get(col); ok {
			row[2] = m.MissingCount
			row[3] = fmt.Sprintf("%.2f", m.MissingPercentage)
		}
		if s, ok := r.Statistics.Get(col); ok {
			integral := r.isInteger(col)
			row[4] = formatStat(s.Mean, false)
			row[5] = formatStat(s.Min, integral)
			row[6] = formatStat(s.Max, integral)
			row[7] = formatStat(s.Std, false)
		}
		t.AppendRow(row)
	})
	t.SetStyle(table.StyleLight)
	return t.Render()
}

func (r *ProfilingReport) isInteger(col string) bool {
	typ, _ := r.DatasetInfo.Schema.Get(col)
	return typ == "Int64"
}

// formatStat rounds to 4 decimals. Integer statistics print without a
// fractional part; other values keep at least one decimal.
func formatStat(v *float64, integral bool) string {
	if v == nil {
		return "N/A"
	}
	if integral {
		return strconv.FormatFloat(math.Round(*v), 'f', 0, 64)
	}
	x := *v
	if math.Abs(x) < 1e15 {
		x = math.Round(x*1e4) / 1e4
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
