package config

import (
	"github.com/sadopc/taskview/internal/report"
)

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Backend: "shell",
		Task: TaskConfig{
			Binary: "task",
		},
		Display: DisplayConfig{
			DescriptionWidth:      report.DefaultDescriptionWidth,
			DurationHumanReadable: true,
		},
		Timewarrior: TimewarriorConfig{
			Enabled: true,
			Binary:  "timew",
		},
		Log: LogConfig{
			Level: "warn",
		},
		DefaultReport: "next",
	}
}

// ReportDefinitions exposes the configured reports to report.Resolver.
func (c *Config) ReportDefinitions() report.Static {
	defs := make(report.Static, len(c.Reports))
	for name, r := range c.Reports {
		defs[name] = report.Definition{Columns: r.Columns, Labels: r.Labels, Filter: r.Filter}
	}
	return defs
}

// DefaultFilters maps every known report to its filter. Configured reports
// win over the built-in ones.
func (c *Config) DefaultFilters() map[string]string {
	filters := make(map[string]string)
	for name, d := range report.Builtin {
		if d.Filter != "" {
			filters[name] = d.Filter
		}
	}
	for name, r := range c.Reports {
		if r.Filter != "" {
			filters[name] = r.Filter
		}
	}
	return filters
}

// Formatter builds a report formatter from the display settings.
func (c *Config) Formatter() *report.Formatter {
	f := report.NewFormatter()
	if c.Display.DescriptionWidth > 0 {
		f.DescriptionWidth = c.Display.DescriptionWidth
	}
	f.VaguePrecise = c.Display.VaguePrecise
	f.DurationHumanReadable = c.Display.DurationHumanReadable
	return f
}
