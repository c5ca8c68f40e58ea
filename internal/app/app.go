package app

import (
	"io"
	"log/slog"

	"github.com/vk/buildgridgo/internal/config"
	"github.com/vk/buildgridgo/internal/hcl"
	"github.com/vk/buildgridgo/internal/yamlcfg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	loaders []config.Loader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Reports and
// validation output go to outW; logs go to logW.
func NewApp(outW, logW io.Writer, appConfig *Config) *App {
	logger := newLogger(appConfig, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		loaders: []config.Loader{
			hcl.NewLoader(),
			yamlcfg.NewLoader(),
		},
	}
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
