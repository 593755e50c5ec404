package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"icloudmonkey/internal/types"
)

// Format is a command output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// StatsReport is the output of the `stats` command.
type StatsReport struct {
	Journal    string     `yaml:"journal"               json:"journal"`
	TotalHides int64      `yaml:"total_hides"           json:"totalHides"`
	LastHide   *time.Time `yaml:"last_hide,omitempty"   json:"lastHide,omitempty"`
	LastTitle  string     `yaml:"last_title,omitempty"  json:"lastTitle,omitempty"`
	LastSource string     `yaml:"last_source,omitempty" json:"lastSource,omitempty"`
}

// NewStatsReport flattens journal statistics for printing.
func NewStatsReport(journalPath string, stats *types.JournalStats) StatsReport {
	r := StatsReport{Journal: journalPath}
	if stats == nil {
		return r
	}
	r.TotalHides = stats.TotalHides
	if last := stats.LastHide; last != nil {
		at := last.HiddenAt.Local()
		r.LastHide = &at
		r.LastTitle = last.Title
		r.LastSource = string(last.Source)
	}
	return r
}

// Print serializes v to w in the given format.
func Print(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		return PrintJSON(w, v)
	case FormatYAML:
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML writes v as YAML.
func PrintYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
