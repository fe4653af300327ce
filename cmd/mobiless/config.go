package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/mobiless/internal/logger"
)

// Config represents the mobiless configuration file (~/.config/mobiless/config.yaml).
// Values only apply when the matching flag was not set on the command line.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// SourcesDir receives <book>.src.zst archives when --keep-sources is not given.
	SourcesDir string `yaml:"sources_dir"`

	// Server
	ServerAddress  string `yaml:"server_address"`
	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`
}

// cfg is the loaded configuration, populated by setup.
var cfg Config

func configPath() string {
	if configFile != "" {
		return configFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mobiless", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't
// exist or can't be parsed.
func LoadConfig(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}
	}
	return c
}

// applyLogConfig applies config file defaults to the logging variables.
func applyLogConfig(c *cli.Command, conf Config) {
	if conf.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = conf.LogLevel
	}
	if conf.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = conf.LogFormat
	}
	if verbose && !c.IsSet("log-level") {
		logLevel = "info"
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, conf Config, addr *string, maxUpload *int64) {
	if conf.ServerAddress != "" && !c.IsSet("addr") {
		*addr = conf.ServerAddress
	}
	if conf.MaxUploadBytes != nil && !c.IsSet("max-upload-bytes") {
		*maxUpload = *conf.MaxUploadBytes
	}
}

// setup loads the config file and installs the logger on the context.
func setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	cfg = LoadConfig(configPath())
	applyLogConfig(c, cfg)

	log, err := logger.Setup(errWriter(c), logLevel, logFormat)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func outWriter(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
