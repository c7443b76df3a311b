// Package config resolves filedex settings from flags, environment,
// an optional config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"filedex/internal/store"

	"github.com/spf13/viper"
)

const (
	AppName = "filedex"

	DefaultBaseDirectory = "test_data"
	DefaultIndexPath     = "file_index.fdx"
	DefaultCodec         = "zstd"
	DefaultLogLevel      = "info"
	DefaultIgnoreFile    = ".filedexignore"
)

// Config is the resolved configuration.
type Config struct {
	BaseDirectory string `mapstructure:"base_directory"`
	IndexPath     string `mapstructure:"index_path"`
	Workers       int    `mapstructure:"workers"`
	Codec         string `mapstructure:"codec"`
	LogLevel      string `mapstructure:"log_level"`
	IgnoreFile    string `mapstructure:"ignore_file"`
}

// New returns a viper instance with defaults and environment bindings set.
// Command flags are bound onto it by the caller.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("base_directory", DefaultBaseDirectory)
	v.SetDefault("index_path", DefaultIndexPath)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("codec", DefaultCodec)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("ignore_file", DefaultIgnoreFile)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// BASE_DIRECTORY is honoured without the prefix as well.
	_ = v.BindEnv("base_directory", "FILEDEX_BASE_DIRECTORY", "BASE_DIRECTORY")

	return v
}

// Load reads the config file, if any, and decodes v into a Config. An
// explicit configFile must exist; otherwise filedex.yaml is looked up in
// the working directory and ~/.config/filedex and may be absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if strings.TrimSpace(c.IndexPath) == "" {
		return errors.New("index path must not be empty")
	}
	if _, err := store.ParseCodec(c.Codec); err != nil {
		return err
	}
	return nil
}

// StoreCodec returns the parsed codec.
func (c *Config) StoreCodec() store.Codec {
	codec, err := store.ParseCodec(c.Codec)
	if err != nil {
		return store.CodecZstd
	}
	return codec
}

// LogPath is where logs go while the UI owns the terminal.
func (c *Config) LogPath() string {
	return filepath.Join(filepath.Dir(c.IndexPath), AppName+".log")
}
