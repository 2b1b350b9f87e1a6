package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings ferry needs to reach the backend.
type Config struct {
	APIURL         string
	LogDir         string
	RequestTimeout time.Duration
}

const (
	// EnvAPIURL overrides the configured base URL.
	EnvAPIURL = "FERRY_API_URL"

	defaultConfigPath = "~/.config/ferry/config.toml"
	defaultLogDir     = "~/.local/share/ferry/logs"
	defaultAPIURL     = "http://localhost:8080/api"
	diagnosticsLog    = "ferry.log"
)

// Load locates and parses the ferry config, falling back to defaults when
// missing. FERRY_API_URL, when set, wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{APIURL: defaultAPIURL, LogDir: mustExpand(defaultLogDir)}

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		applyEnv(&cfg)
		return cfg, nil
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		LogDir         string `toml:"log_dir"`
		RequestTimeout string `toml:"request_timeout"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if apiURL := strings.TrimSpace(raw.APIURL); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logDir := strings.TrimSpace(raw.LogDir); logDir != "" {
		cfg.LogDir = mustExpand(logDir)
	}
	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("parse request_timeout: negative duration %s", d)
		}
		cfg.RequestTimeout = d
	}

	applyEnv(&cfg)
	return cfg, nil
}

// DiagnosticsLogPath returns the file failed API calls are logged to.
func (c Config) DiagnosticsLogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + diagnosticsLog)
	}
	return filepath.Join(c.LogDir, diagnosticsLog)
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
