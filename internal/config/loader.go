package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. TASKVIEW_BACKEND or
// TASKVIEW_DISPLAY_DESCRIPTION_WIDTH.
const EnvPrefix = "TASKVIEW"

// Load reads the YAML file at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("backend", d.Backend)
	v.SetDefault("task.binary", d.Task.Binary)
	v.SetDefault("embedded.data_dir", d.Embedded.DataDir)
	v.SetDefault("display.description_width", d.Display.DescriptionWidth)
	v.SetDefault("display.vague_precise", d.Display.VaguePrecise)
	v.SetDefault("display.duration_human_readable", d.Display.DurationHumanReadable)
	v.SetDefault("timewarrior.enabled", d.Timewarrior.Enabled)
	v.SetDefault("timewarrior.binary", d.Timewarrior.Binary)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("default_report", d.DefaultReport)
	v.SetDefault("context", d.Context)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Backend {
	case "shell", "embedded":
	default:
		return fmt.Errorf("backend must be shell or embedded, got %q", c.Backend)
	}
	if c.Display.DescriptionWidth < 0 {
		return fmt.Errorf("display.description_width must not be negative")
	}
	for name, r := range c.Reports {
		if len(r.Columns) == 0 {
			return fmt.Errorf("reports.%s: columns are required", name)
		}
	}
	return nil
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultPath returns $XDG_CONFIG_HOME/taskview/config.yaml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "taskview", "config.yaml"), nil
}
