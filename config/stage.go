package config

import (
	"time"

	"github.com/fxsml/stagepipe/pipe"
)

// Stage holds the environment-settable part of a pipe.Config.
type Stage struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
}

// Apply overlays the non-zero fields of s onto cfg.
func (s Stage) Apply(cfg pipe.Config) pipe.Config {
	if s.Name != "" {
		cfg.Name = s.Name
	}
	if s.Interval != 0 {
		cfg.Interval = s.Interval
	}
	if s.Timeout != 0 {
		cfg.Timeout = s.Timeout
	}
	return cfg
}

// Overlay reads {Prefix}_{STAGE}_* overrides for stage and applies them to cfg.
func (l Loader) Overlay(stage string, cfg pipe.Config) (pipe.Config, error) {
	var s Stage
	if err := l.Load(stage, &s); err != nil {
		return cfg, err
	}
	return s.Apply(cfg), nil
}
