package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/csvprof/internal/dataset"
)

// Global configuration structure.
type Global struct {
	OutputDir     string   `mapstructure:"output_dir" yaml:"output_dir"`
	HistogramBins int      `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	NullValues    []string `mapstructure:"null_values" yaml:"null_values"`
	// CSV parsing; empty means auto (tab for .tsv, comma otherwise)
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Artifacts rendered by `profile` besides JSON and Markdown
	PDF    bool `mapstructure:"pdf" yaml:"pdf"`
	Charts bool `mapstructure:"charts" yaml:"charts"`
	HTML   bool `mapstructure:"html" yaml:"html"`

	// Web server
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.csvprof.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".csvprof"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvprof/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.csvprof/config.yaml) > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	// optional; existing environment variables win
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CSVPROF")
	v.AutomaticEnv()

	v.SetDefault("output_dir", "profiling_output")
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("null_values", []string{})
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("pdf", true)
	v.SetDefault("charts", true)
	v.SetDefault("html", false)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HistogramBins <= 0 {
		c.HistogramBins = 20
	}
	return &c, nil
}

// Set assigns a single key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "output_dir":
		c.OutputDir = val
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "null_values":
		c.NullValues = nil
		for _, tok := range strings.Split(val, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				c.NullValues = append(c.NullValues, tok)
			}
		}
	case "delimiter", "decimal_separator", "thousands_separator":
		if _, err := ParseSeparator(val); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		switch key {
		case "delimiter":
			c.Delimiter = val
		case "decimal_separator":
			c.DecimalSeparator = val
		default:
			c.ThousandsSeparator = val
		}
	case "pdf", "charts", "html":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %w", key, err)
		}
		switch key {
		case "pdf":
			c.PDF = b
		case "charts":
			c.Charts = b
		default:
			c.HTML = b
		}
	case "listen_addr":
		c.ListenAddr = val
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for max_upload_mb: %v", val)
		}
		c.MaxUploadMB = i
	case "log_level":
		switch strings.ToLower(val) {
		case "trace", "debug", "info", "warn", "warning", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// DatasetOptions converts the parsing keys into loader options.
func (c *Global) DatasetOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.NullValues = append([]string(nil), c.NullValues...)
	var err error
	if opt.Delimiter, err = ParseSeparator(c.Delimiter); err != nil {
		return opt, fmt.Errorf("delimiter: %w", err)
	}
	if opt.DecimalSeparator, err = ParseSeparator(c.DecimalSeparator); err != nil {
		return opt, fmt.Errorf("decimal_separator: %w", err)
	}
	if opt.ThousandsSeparator, err = ParseSeparator(c.ThousandsSeparator); err != nil {
		return opt, fmt.Errorf("thousands_separator: %w", err)
	}
	return opt, nil
}

// ParseSeparator accepts a single character, "tab" or "\t". Empty means unset.
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("want a single character, got %q", s)
	}
	return r, nil
}
