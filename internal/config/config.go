// Package config reads process configuration from the environment and an
// optional .env file, and seeds the persisted settings from it.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sadopc/shiftr/internal/store"
)

const (
	EnvDB           = "SHIFTR_DB"
	EnvLog          = "SHIFTR_LOG"
	EnvLogLevel     = "SHIFTR_LOG_LEVEL"
	EnvEndpoint     = "SHIFTR_ENDPOINT"
	EnvToken        = "SHIFTR_TOKEN"
	EnvReportPrefix = "SHIFTR_REPORT_PREFIX"
	EnvServeAddr    = "SHIFTR_SERVE_ADDR"

	DefaultServeAddr = "127.0.0.1:8787"
)

type Config struct {
	DBPath       string
	LogPath      string
	LogLevel     string
	Endpoint     string
	Token        string
	ReportPrefix string
	ServeAddr    string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Missing .env files are not an error; variables already set
// in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Config{
		DBPath:       env(EnvDB),
		LogPath:      env(EnvLog),
		LogLevel:     strings.ToLower(env(EnvLogLevel)),
		Endpoint:     env(EnvEndpoint),
		Token:        env(EnvToken),
		ReportPrefix: env(EnvReportPrefix),
		ServeAddr:    env(EnvServeAddr),
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = p
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(filepath.Dir(cfg.DBPath), "shiftr.log")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}
	return cfg, nil
}

// Seed copies environment-provided settings into s, only where the stored
// value is still blank. Values edited in the app are never overwritten.
func (c Config) Seed(s *store.Store) error {
	for key, value := range map[string]string{
		store.KeyEndpoint:     c.Endpoint,
		store.KeyToken:        c.Token,
		store.KeyReportPrefix: c.ReportPrefix,
	} {
		if value == "" {
			continue
		}
		if err := s.SeedSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
