package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/browser-runtime/fetch"
)

// envConfig holds raw environment configuration.
type envConfig struct {
	FetchTimeout  time.Duration `env:"BROWSER_FETCH_TIMEOUT"   envDefault:"30s"`
	FetchMaxBytes int64         `env:"BROWSER_FETCH_MAX_BYTES" envDefault:"10485760"`
	AllowHosts    []string      `env:"BROWSER_ALLOW_HOSTS"     envSeparator:","`
	LogLevel      string        `env:"BROWSER_LOG_LEVEL"       envDefault:"error"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c envConfig) fetchConfig() fetch.Config {
	return fetch.Config{
		Timeout:    c.FetchTimeout,
		MaxBytes:   c.FetchMaxBytes,
		AllowHosts: c.AllowHosts,
	}
}

// newLogger builds a console logger on stderr so stdout stays clean for the
// serialized document.
func (c envConfig) newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
