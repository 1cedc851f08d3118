package config

// Config is the full taskview configuration.
type Config struct {
	// Backend selects the task source: "shell" or "embedded".
	Backend string `yaml:"backend" mapstructure:"backend"`

	Task        TaskConfig              `yaml:"task" mapstructure:"task"`
	Embedded    EmbeddedConfig          `yaml:"embedded" mapstructure:"embedded"`
	Display     DisplayConfig           `yaml:"display" mapstructure:"display"`
	Timewarrior TimewarriorConfig       `yaml:"timewarrior" mapstructure:"timewarrior"`
	Log         LogConfig               `yaml:"log" mapstructure:"log"`
	Reports     map[string]ReportConfig `yaml:"reports,omitempty" mapstructure:"reports"`

	DefaultReport string `yaml:"default_report" mapstructure:"default_report"`
	// Context is a filter ANDed onto every export, like a Taskwarrior context.
	Context string `yaml:"context" mapstructure:"context"`
}

type TaskConfig struct {
	Binary string `yaml:"binary" mapstructure:"binary"`
}

type EmbeddedConfig struct {
	// DataDir holds the SQLite database; empty means the platform default.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

type DisplayConfig struct {
	DescriptionWidth      int  `yaml:"description_width" mapstructure:"description_width"`
	VaguePrecise          bool `yaml:"vague_precise" mapstructure:"vague_precise"`
	DurationHumanReadable bool `yaml:"duration_human_readable" mapstructure:"duration_human_readable"`
}

type TimewarriorConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Binary  string `yaml:"binary" mapstructure:"binary"`
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// ReportConfig overrides or adds a named report.
type ReportConfig struct {
	Columns []string `yaml:"columns" mapstructure:"columns"`
	Labels  []string `yaml:"labels,omitempty" mapstructure:"labels"`
	Filter  string   `yaml:"filter,omitempty" mapstructure:"filter"`
}
