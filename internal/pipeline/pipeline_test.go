package pipeline

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvprof/internal/dataset"
)

func load(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.ReadCSV(strings.NewReader("a,b\n1,x\n,y\n3,\n"), "s.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return ds
}

func TestRunCoreOnly(t *testing.T) {
	res, err := Run(load(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Report.DatasetInfo.Rows)
	assert.Contains(t, string(res.JSON), `"missing_value_analysis"`)
	assert.True(t, strings.HasPrefix(res.Markdown, "# Dataset Profiling Report"))
	assert.Nil(t, res.Charts)
	assert.Nil(t, res.PDF)
	assert.Nil(t, res.HTML)
}

func TestRunAllArtifacts(t *testing.T) {
	res, err := Run(load(t), Options{Bins: 5, Charts: true, PDF: true, HTML: true})
	require.NoError(t, err)
	require.Len(t, res.Charts, 2)
	assert.Equal(t, "missing_values.png", res.Charts[0].Name)
	assert.Equal(t, "hist_a.png", res.Charts[1].Name)
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF")))
	// report text page plus one page per chart
	pages := regexp.MustCompile(`/Type\s*/Page\b`).FindAll(res.PDF, -1)
	assert.Len(t, pages, 3)
	assert.Contains(t, string(res.HTML), "Distribution of a")
}
