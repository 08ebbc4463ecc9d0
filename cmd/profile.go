package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/csvprof/internal/config"
	"github.com/KaramelBytes/csvprof/internal/dataset"
	"github.com/KaramelBytes/csvprof/internal/output"
	"github.com/KaramelBytes/csvprof/internal/pipeline"
)

var (
	profOutputDir string
	profDelimiter string
	profNulls     []string
	profDecimal   string
	profThousands string
	profSheet     string
	profBins      int
	profPDF       bool
	profCharts    bool
	profHTML      bool
	profStdout    string
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a CSV/TSV/XLSX file and write the report bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		opt, err := c.DatasetOptions()
		if err != nil {
			return err
		}
		if err := applyParseFlags(cmd, &opt); err != nil {
			return err
		}
		switch profStdout {
		case "", "md", "json", "table":
		default:
			return fmt.Errorf("unsupported --stdout: %s (use md|json|table)", profStdout)
		}

		popt := pipeline.Options{Bins: c.HistogramBins, Charts: c.Charts, PDF: c.PDF, HTML: c.HTML}
		f := cmd.Flags()
		if f.Changed("bins") {
			if profBins <= 0 {
				return fmt.Errorf("--bins must be positive, got %d", profBins)
			}
			popt.Bins = profBins
		}
		if f.Changed("pdf") {
			popt.PDF = profPDF
		}
		if f.Changed("charts") {
			popt.Charts = profCharts
		}
		if f.Changed("html") {
			popt.HTML = profHTML
		}
		outDir := c.OutputDir
		if profOutputDir != "" {
			outDir = profOutputDir
		}

		ds, err := dataset.LoadFile(path, opt)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"source":  ds.Name,
			"rows":    ds.Rows(),
			"columns": len(ds.Columns),
		}).Debug("loaded dataset")

		res, err := pipeline.Run(ds, popt)
		if err != nil {
			return err
		}
		m, err := output.Write(outDir, output.Bundle{
			Source:   path,
			JSON:     res.JSON,
			Markdown: res.Markdown,
			PDF:      res.PDF,
			Charts:   res.Charts,
			HTML:     res.HTML,
		})
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"run_id": m.ID, "dir": outDir, "artifacts": len(m.Artifacts)}).Debug("wrote bundle")

		out := cmd.OutOrStdout()
		switch profStdout {
		case "md":
			fmt.Fprintln(out, res.Markdown)
		case "json":
			fmt.Fprintln(out, string(res.JSON))
		case "table":
			fmt.Fprintln(out, res.Report.Table())
		}
		if popt.Charts && len(res.Charts) == 0 {
			fmt.Fprintln(out, "⚠ No charts rendered (no columns to plot)")
		}
		fmt.Fprintln(out, "=== PROFILING COMPLETE ===")
		for _, p := range m.Paths(outDir) {
			fmt.Fprintf(out, "✓ %s\n", p)
		}
		fmt.Fprintf(out, "✓ %s\n", filepath.Join(outDir, output.ManifestFileName))
		return nil
	},
}

// applyParseFlags overrides configured parsing options with explicit flags.
func applyParseFlags(cmd *cobra.Command, opt *dataset.Options) error {
	f := cmd.Flags()
	if f.Changed("delimiter") {
		r, err := cfgpkg.ParseSeparator(profDelimiter)
		if err != nil {
			return fmt.Errorf("unsupported --delimiter: %w", err)
		}
		opt.Delimiter = r
	}
	if f.Changed("decimal") {
		r, err := cfgpkg.ParseSeparator(separatorWord(profDecimal))
		if err != nil {
			return fmt.Errorf("unsupported --decimal: %w", err)
		}
		opt.DecimalSeparator = r
	}
	if f.Changed("thousands") {
		r, err := cfgpkg.ParseSeparator(separatorWord(profThousands))
		if err != nil {
			return fmt.Errorf("unsupported --thousands: %w", err)
		}
		opt.ThousandsSeparator = r
	}
	if f.Changed("null") {
		opt.NullValues = append(opt.NullValues, profNulls...)
	}
	opt.Sheet = profSheet
	return nil
}

func separatorWord(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comma":
		return ","
	case "dot":
		return "."
	case "space":
		return " "
	}
	return s
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputDir, "output", "o", "", "output directory (default from config: profiling_output)")
	profileCmd.Flags().StringVar(&profDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default: tab for .tsv, comma otherwise)")
	profileCmd.Flags().StringArrayVar(&profNulls, "null", nil, "extra token treated as missing (repeatable)")
	profileCmd.Flags().StringVar(&profDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	profileCmd.Flags().StringVar(&profThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	profileCmd.Flags().StringVar(&profSheet, "sheet", "", "XLSX: sheet name (default: first sheet)")
	profileCmd.Flags().IntVar(&profBins, "bins", 20, "histogram bins")
	profileCmd.Flags().BoolVar(&profPDF, "pdf", true, "write the PDF report")
	profileCmd.Flags().BoolVar(&profCharts, "charts", true, "write PNG charts")
	profileCmd.Flags().BoolVar(&profHTML, "html", false, "write the interactive chart page")
	profileCmd.Flags().StringVar(&profStdout, "stdout", "", "also print the report: md|json|table")
}
