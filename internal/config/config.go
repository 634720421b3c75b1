package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// APIKeyEnv overrides omdb.api_key when set.
const APIKeyEnv = "OMDB_API_KEY"

// ErrMissingAPIKey is returned by Validate when no OMDb key is configured.
var ErrMissingAPIKey = errors.New("OMDb API key is required. Get one from https://www.omdbapi.com/apikey.aspx or set " + APIKeyEnv)

// Config represents the application configuration
type Config struct {
	OMDb    OMDbConfig    `yaml:"omdb"`
	Search  SearchConfig  `yaml:"search"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// OMDbConfig holds OMDb API configuration
type OMDbConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	QuoteTerms *bool         `yaml:"quote_terms"`
	Retries    int           `yaml:"retries"`
}

// SearchConfig holds search-as-you-type settings
type SearchConfig struct {
	MinLength int `yaml:"min_length"`
}

// StorageConfig selects where the watched list lives
type StorageConfig struct {
	Driver  string `yaml:"driver"`
	DataDir string `yaml:"data_dir"`
}

// LogConfig holds log file settings
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns ~/.config/popcorn/config.yaml, or a relative path when
// no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "popcorn.yaml"
	}
	return filepath.Join(dir, "popcorn", "config.yaml")
}

// Load reads and parses the configuration file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(err, "failed to read config file")
	default:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.OMDb.APIKey = key
	}

	cfg.applyDefaults()
	if cfg.Storage.DataDir, err = expandHome(cfg.Storage.DataDir); err != nil {
		return nil, err
	}
	if cfg.Log.File, err = expandHome(cfg.Log.File); err != nil {
		return nil, err
	}

	if cfg.Storage.Driver != DriverSQLite && cfg.Storage.Driver != DriverFile {
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// Validate checks the settings needed to reach OMDb.
func (c *Config) Validate() error {
	if c.OMDb.APIKey == "" || c.OMDb.APIKey == "your_api_key_here" {
		return ErrMissingAPIKey
	}
	return nil
}

// QuoteSearchTerms reports whether search terms are sent wrapped in quotes.
func (c *Config) QuoteSearchTerms() bool {
	return c.OMDb.QuoteTerms == nil || *c.OMDb.QuoteTerms
}

// DatabasePath is the SQLite file used by the sqlite driver.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, "popcorn.db")
}

// RecordsDir is the directory used by the file driver.
func (c *Config) RecordsDir() string {
	return filepath.Join(c.Storage.DataDir, "records")
}

func (c *Config) applyDefaults() {
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = "https://www.omdbapi.com/"
	}
	if c.OMDb.Timeout <= 0 {
		c.OMDb.Timeout = 10 * time.Second
	}
	if c.OMDb.Retries <= 0 {
		c.OMDb.Retries = 3
	}
	if c.Search.MinLength <= 0 {
		c.Search.MinLength = 3
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "~/.popcorn"
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.Storage.DataDir, "popcorn.log")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, path[1:]), nil
}
