package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppPrefix is the environment prefix of the medianpipe binary.
const AppPrefix = "MEDIANPIPE"

// App holds the configuration of the medianpipe binary.
type App struct {
	Source   SourceConfig
	Filter   FilterConfig
	Recorder RecorderConfig
	Logging  LogConfig
	Metrics  MetricsConfig
}

// SourceConfig configures the random frame producer.
type SourceConfig struct {
	Height   int           `default:"1024"`
	Width    int           `default:"768"`
	Channels int           `default:"3"`
	Steps    int           `default:"100"`
	Interval time.Duration `default:"50ms"`
	Seed     uint64        `default:"0"`
}

// FilterConfig configures the median filter brokers.
type FilterConfig struct {
	Height        int           `default:"512"`
	Width         int           `default:"384"`
	FootprintRows int           `split_words:"true" default:"5"`
	FootprintCols int           `split_words:"true" default:"5"`
	Workers       int           `default:"1"`
	Timeout       time.Duration `default:"10s"`
}

// RecorderConfig configures the picture recorders.
type RecorderConfig struct {
	Folder              string        `default:"processed"`
	Stem                string        `default:"output"`
	Ext                 string        `default:"png"`
	Workers             int           `default:"1"`
	MaxConcurrentWrites int64         `split_words:"true" default:"0"`
	WriteTimeout        time.Duration `split_words:"true" default:"5s"`
	Timeout             time.Duration `default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `default:"info"`
	Development bool   `default:"false"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string
}

// LoadApp loads the binary configuration from MEDIANPIPE_* variables.
func LoadApp() (*App, error) {
	var cfg App
	if err := envconfig.Process(AppPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings no pipeline can run with.
func (c *App) Validate() error {
	var errs []error
	if c.Source.Height <= 0 || c.Source.Width <= 0 {
		errs = append(errs, fmt.Errorf("source shape %dx%d must be positive", c.Source.Height, c.Source.Width))
	}
	if c.Filter.Height <= 0 || c.Filter.Width <= 0 {
		errs = append(errs, fmt.Errorf("filter shape %dx%d must be positive", c.Filter.Height, c.Filter.Width))
	}
	if c.Filter.FootprintRows <= 0 || c.Filter.FootprintCols <= 0 {
		errs = append(errs, fmt.Errorf("footprint %dx%d must be positive", c.Filter.FootprintRows, c.Filter.FootprintCols))
	}
	if c.Filter.Workers <= 0 {
		errs = append(errs, errors.New("filter workers must be positive"))
	}
	if c.Recorder.Workers <= 0 {
		errs = append(errs, errors.New("recorder workers must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
