package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// Config is the YAML run configuration. CLI flags are merged on top of it.
type Config struct {
	Accounts    []models.Account `yaml:"accounts"`
	Tables      []string         `yaml:"tables"`
	PageSize    int32            `yaml:"pageSize"`
	CacheSize   int              `yaml:"cacheSize"`
	MaxParallel int              `yaml:"maxParallel"`
}

func New() *Config {
	return &Config{
		PageSize:  constants.DefaultPageSize,
		CacheSize: constants.DefaultCacheSize,
	}
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table is required")
	}
	for i, account := range c.Accounts {
		if account.Name == "" {
			return fmt.Errorf("account %d has no name", i)
		}
	}
	if c.PageSize < 0 {
		return fmt.Errorf("pageSize must not be negative")
	}
	if c.CacheSize < constants.TransactWriteItemSize {
		return fmt.Errorf("cacheSize must be at least the batch size (%d)", constants.TransactWriteItemSize)
	}
	return nil
}

// Job converts the validated config into a dispatchable purge job.
func (c *Config) Job() models.PurgeJob {
	return models.PurgeJob{
		Accounts:    c.Accounts,
		Tables:      c.Tables,
		PageSize:    c.PageSize,
		CacheSize:   c.CacheSize,
		MaxParallel: c.MaxParallel,
	}
}
