package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// PipelinePath is a single pipeline file or a directory of them.
	PipelinePath string

	FailFast        bool
	FailFastOnInfra bool
	Concurrency     int64

	// OnlyEnv holds raw --only-env selector strings.
	OnlyEnv []string

	// StepTimeout overrides the pipeline's default per-step timeout.
	StepTimeout time.Duration

	ReportFile     string
	KeepWorkspaces bool
	InheritEnv     bool
	EventsURL      string
	Watch          bool
	Verbose        bool

	LogFormat string
	LogLevel  string

	// ListenAddr is the bind address for the serve command.
	ListenAddr string
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.Concurrency < 0 {
		return nil, errors.New("concurrency cannot be negative")
	}
	if cfg.StepTimeout < 0 {
		return nil, errors.New("timeout cannot be negative")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := levelNames[cfg.LogLevel]; !ok {
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &cfg, nil
}
