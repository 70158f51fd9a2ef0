// Package config resolves settings from defaults, TOML files, the
// environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"github.com/idilsaglam/todoview/internal/pipeline"
)

const (
	StoreRemote = "remote"
	StoreFile   = "file"

	DefaultAPIURL            = "http://localhost:8080"
	DefaultItemsPath         = "/todos"
	DefaultTimeout           = "10s"
	DefaultLogLevel          = "info"
	DefaultTheme             = "classic"
	DefaultDeleteConcurrency = 8

	appDir = "todo"
)

// Config is the resolved configuration.
type Config struct {
	Store     string `toml:"store"`
	APIURL    string `toml:"api_url"`
	ItemsPath string `toml:"items_path"`
	Timeout   string `toml:"timeout"`
	File      string `toml:"file"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
	Theme    string `toml:"theme"`

	Sort              string `toml:"sort"`
	Filter            string `toml:"filter"`
	ApplySearch       bool   `toml:"apply_search"`
	DeleteConcurrency int    `toml:"delete_concurrency"`

	// Files lists the config files that were read, in order.
	Files []string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store:             StoreRemote,
		APIURL:            DefaultAPIURL,
		ItemsPath:         DefaultItemsPath,
		Timeout:           DefaultTimeout,
		LogFile:           defaultLogFile(),
		LogLevel:          DefaultLogLevel,
		Theme:             DefaultTheme,
		Sort:              "asc",
		Filter:            "all",
		DeleteConcurrency: DefaultDeleteConcurrency,
	}
}

// Flags are the command-line overrides, registered on a pflag set.
type Flags struct {
	ConfigFile string
	Store      string
	APIURL     string
	File       string
	LogFile    string
	LogLevel   string
	Theme      string
	Timeout    string
}

// Bind registers the persistent flags.
func (f *Flags) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigFile, "config", "", "config file (TOML)")
	fs.StringVar(&f.Store, "store", "", "item store: remote or file")
	fs.StringVar(&f.APIURL, "api-url", "", "base URL of the to-do API")
	fs.StringVar(&f.File, "file", "", "JSON file used when --store=file")
	fs.StringVar(&f.LogFile, "log-file", "", "log destination, - to disable")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.Theme, "theme", "", "classic, neon or mono")
	fs.StringVar(&f.Timeout, "timeout", "", "per-request timeout, e.g. 10s")
}

// Load resolves the configuration. fs may be nil; only flags the user
// actually set override lower layers.
func Load(flags Flags, fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if flags.ConfigFile != "" {
		if err := loadFile(cfg, flags.ConfigFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", flags.ConfigFile, err)
		}
	} else {
		for _, p := range []string{userConfigFile(), projectConfigFile()} {
			if p == "" {
				continue
			}
			if err := loadFile(cfg, p); err != nil {
				return nil, fmt.Errorf("loading config file %s: %w", p, err)
			}
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cfg, flags, fs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func loadEnv(cfg *Config) error {
	str := map[string]*string{
		"TODO_STORE":      &cfg.Store,
		"TODO_API_URL":    &cfg.APIURL,
		"TODO_ITEMS_PATH": &cfg.ItemsPath,
		"TODO_TIMEOUT":    &cfg.Timeout,
		"TODO_FILE":       &cfg.File,
		"TODO_LOG_FILE":   &cfg.LogFile,
		"TODO_LOG_LEVEL":  &cfg.LogLevel,
		"TODO_THEME":      &cfg.Theme,
	}
	for k, dst := range str {
		if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	if v := strings.TrimSpace(os.Getenv("TODO_APPLY_SEARCH")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODO_APPLY_SEARCH: %w", err)
		}
		cfg.ApplySearch = b
	}
	return nil
}

func applyFlags(cfg *Config, f Flags, fs *pflag.FlagSet) {
	set := func(name, val string, dst *string) {
		if fs != nil && !fs.Changed(name) {
			return
		}
		if val != "" {
			*dst = val
		}
	}
	set("store", f.Store, &cfg.Store)
	set("api-url", f.APIURL, &cfg.APIURL)
	set("file", f.File, &cfg.File)
	set("log-file", f.LogFile, &cfg.LogFile)
	set("log-level", f.LogLevel, &cfg.LogLevel)
	set("theme", f.Theme, &cfg.Theme)
	set("timeout", f.Timeout, &cfg.Timeout)
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreRemote, StoreFile:
	default:
		errs = append(errs, fmt.Errorf("store: unknown value %q (want remote or file)", c.Store))
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("timeout: invalid duration %q", c.Timeout))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown value %q", c.LogLevel))
	}
	if _, ok := pipeline.ParseSort(c.Sort); !ok {
		errs = append(errs, fmt.Errorf("sort: unknown value %q", c.Sort))
	}
	if _, ok := pipeline.ParseFilter(c.Filter); !ok {
		errs = append(errs, fmt.Errorf("filter: unknown value %q", c.Filter))
	}
	if c.DeleteConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("delete_concurrency: must be positive, got %d", c.DeleteConcurrency))
	}
	return errors.Join(errs...)
}

// RequestTimeout is the parsed Timeout. Call after Validate.
func (c *Config) RequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Params are the initial view parameters. Call after Validate.
func (c *Config) Params() pipeline.Params {
	s, _ := pipeline.ParseSort(c.Sort)
	f, _ := pipeline.ParseFilter(c.Filter)
	return pipeline.Params{Sort: s, Filter: f, ApplySearch: c.ApplySearch}
}

func userConfigFile() string {
	dir, err := os.UserConfigDir()
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dir, err = xdg, nil
	}
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, appDir, "config.toml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func projectConfigFile() string {
	for _, name := range []string{"todo.toml", ".todo.toml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "-"
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, appDir, "todo.log")
}
