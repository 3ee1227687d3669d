// Package config reads client configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	API   API   `yaml:"api"`
	State State `yaml:"state"`
	Log   Log   `yaml:"log"`
}

// API describes how to reach the catalog backend.
type API struct {
	BaseURL       string        `yaml:"base_url" env:"PUSTAK_API_URL" env-default:"http://localhost:8000/api"`
	Timeout       time.Duration `yaml:"timeout" env:"PUSTAK_API_TIMEOUT" env-default:"30s"`
	TrailingSlash bool          `yaml:"trailing_slash" env:"PUSTAK_TRAILING_SLASH" env-default:"true"`
	UploadPath    string        `yaml:"upload_path" env:"PUSTAK_UPLOAD_PATH" env-default:"/upload"`
}

// State is where the persisted session lives between invocations.
type State struct {
	File string `yaml:"file" env:"PUSTAK_STATE_FILE"`
}

type Log struct {
	Level string `yaml:"level" env:"PUSTAK_LOG_LEVEL" env-default:"info"`
}

// Load reads path when it exists and overlays environment variables.
// An empty path falls back to DefaultPath; a missing default file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	err := cleanenv.ReadConfig(path, cfg)
	switch {
	case err == nil:
		slog.Debug("Read configuration", "path", path)
	case !explicit && errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if cfg.State.File == "" {
		cfg.State.File = defaultStateFile()
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	return cfg, nil
}

// Description lists the supported environment variables.
func Description() string {
	help, _ := cleanenv.GetDescription(&Config{}, nil)
	return help
}

// SlogLevel maps the configured level name onto a slog.Level.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultPath is $XDG_CONFIG_HOME/pustak/config.yml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(dir, "pustak", "config.yml")
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".pustak-state.json"
	}
	return filepath.Join(dir, "pustak", "state.json")
}
