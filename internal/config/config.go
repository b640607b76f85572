package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DirName is the per-user data directory under $HOME
	DirName = ".checklist"
	// LogFileName is where the TUI sends logs when no output is configured
	LogFileName = "checklist.log"
)

// Config holds all application configuration.
type Config struct {
	DataDir string
	Storage StorageConfig
	Catalog CatalogConfig
	UI      UIConfig
	Logger  LoggerConfig
}

type StorageConfig struct {
	Backend   string // file | sqlite | memory
	CacheSize int
}

type CatalogConfig struct {
	Path string // empty: embedded default catalog
}

type UIConfig struct {
	Theme string // classic | neon | mono
}

type LoggerConfig struct {
	Level    string
	Encoding string // console | json
	Output   string // empty: stderr
}

// DefaultDataDir returns ~/.checklist, or ./.checklist when there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// Load reads config.yaml (from path when given, otherwise from the data dir
// and the working directory) and CHECKLIST_* environment variables.
// A missing config file is fine; a broken one is not.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("checklist")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDataDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.DataDir = v.GetString("data_dir")
	cfg.Storage.Backend = v.GetString("storage.backend")
	cfg.Storage.CacheSize = v.GetInt("storage.cache_size")
	cfg.Catalog.Path = v.GetString("catalog.path")
	cfg.UI.Theme = v.GetString("ui.theme")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.Output = v.GetString("logger.output")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.cache_size", 256)
	v.SetDefault("catalog.path", "")
	v.SetDefault("ui.theme", "classic")
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.output", "")
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want file, sqlite or memory)", c.Storage.Backend)
	}
	switch c.Logger.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("logger.encoding: unknown encoding %q (want console or json)", c.Logger.Encoding)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir: must not be empty")
	}
	return nil
}

// LogPath is the default log file used by the interactive UI.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, LogFileName)
}
