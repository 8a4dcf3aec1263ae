// Package config handles tempchart configuration loading.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/tempchart/pkg/chart"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	Chart    ChartConfig    `yaml:"chart"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// ChartConfig selects a layout preset and optional per-field overrides.
// Zero or nil overrides keep the preset value.
type ChartConfig struct {
	Preset      string   `yaml:"preset" validate:"required"`
	Days        int      `yaml:"days,omitempty" validate:"gte=0,lte=366"`
	MinTemp     *float64 `yaml:"min_temp,omitempty"`
	MaxTemp     *float64 `yaml:"max_temp,omitempty"`
	StepTemp    *float64 `yaml:"step_temp,omitempty"`
	Orientation string   `yaml:"orientation,omitempty" validate:"omitempty,oneof=descending ascending"`
}

// OutputConfig holds the file destination and serialization format.
type OutputConfig struct {
	Format string `yaml:"format" validate:"oneof=pdf svg png"`

	// Root is the base directory; empty means the user's downloads folder.
	Root     string `yaml:"root"`
	Dir      string `yaml:"dir" validate:"required"`
	BaseName string `yaml:"base_name" validate:"required"`
}

// StorageConfig enables an additional upload to an S3-compatible bucket.
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Enabled true"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket" validate:"required_if=Enabled true"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host          string   `yaml:"host" validate:"required"`
	Port          int      `yaml:"port" validate:"gt=0,lte=65535"`
	CORSOrigins   []string `yaml:"cors_origins"`
	EnableLogging bool     `yaml:"enable_logging"`
}

// ScheduleConfig controls periodic regeneration.
type ScheduleConfig struct {
	Enabled bool          `yaml:"enabled"`
	Every   time.Duration `yaml:"every" validate:"required_if=Enabled true"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Chart: ChartConfig{
			Preset: chart.PresetWide,
		},
		Output: OutputConfig{
			Format:   "pdf",
			Dir:      "PDF",
			BaseName: "test",
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8081,
			EnableLogging: true,
		},
		Schedule: ScheduleConfig{
			Every: 15 * time.Minute,
		},
	}
}

// ChartSettings resolves the preset and applies overrides. The result is
// validated.
func (c *Config) ChartSettings() (chart.Config, error) {
	cc, err := chart.Preset(c.Chart.Preset)
	if err != nil {
		return chart.Config{}, err
	}
	if c.Chart.Days > 0 {
		cc.DayCount = c.Chart.Days
	}
	if c.Chart.MinTemp != nil {
		cc.MinTemp = *c.Chart.MinTemp
	}
	if c.Chart.MaxTemp != nil {
		cc.MaxTemp = *c.Chart.MaxTemp
	}
	if c.Chart.StepTemp != nil {
		cc.StepTemp = *c.Chart.StepTemp
	}
	if c.Chart.Orientation != "" {
		cc.Orientation = chart.Orientation(c.Chart.Orientation)
	}
	if c.Chart.MinTemp != nil || c.Chart.MaxTemp != nil {
		// Keep the preset's sample band only while it still fits the range.
		if cc.SampleMin < cc.MinTemp || cc.SampleMax > cc.MaxTemp {
			cc.SampleMin, cc.SampleMax = 0, 0
		}
	}
	if err := cc.Validate(); err != nil {
		return chart.Config{}, err
	}
	return cc, nil
}

var validate = validator.New()

// Validate checks field constraints and that the chart settings resolve.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		ce := cerrors.ConfigWrap(err, cerrors.ErrConfigInvalid, "invalid configuration")
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			ce.WithContext("field", verrs[0].Namespace()).
				WithContext("rule", verrs[0].Tag())
		}
		return ce
	}
	if _, err := c.ChartSettings(); err != nil {
		return err
	}
	return nil
}

// Load loads configuration from a file, applies TEMPCHART_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := cerrors.ErrConfigReadFailed
		if os.IsNotExist(err) {
			code = cerrors.ErrConfigNotFound
		}
		return nil, cerrors.ConfigWrap(err, code, "failed to read config").WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cerrors.ConfigWrap(err, cerrors.ErrConfigParseFailed, "failed to parse config").
			WithContext("path", path)
	}
	return finish(cfg)
}

// LoadOrDefault loads config from path, or uses the defaults if the file
// does not exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return finish(Default())
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return finish(Default())
	}
	return Load(path)
}

func finish(cfg *Config) (*Config, error) {
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return cerrors.ConfigWrap(err, cerrors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", dir)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return cerrors.ConfigWrap(err, cerrors.ErrConfigWriteFailed, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return cerrors.ConfigWrap(err, cerrors.ErrConfigWriteFailed, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	if _, err := os.Stat("config/config.yaml"); err == nil {
		return "config/config.yaml"
	}
	return "config.yaml"
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Default().Save(path)
}
