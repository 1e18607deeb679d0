package config

import (
	"os"

	"github.com/Luismorlan/ledger_in_go/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// This is the global app config for the ledger.
type AppConfig struct {
	// How many leading hex 0s form a valid hash.
	DIFFICULTY int `yaml:"difficulty"`
	// The reward credited to the miner of each block.
	MINING_REWARD float64 `yaml:"mining_reward"`
	// How many (tip, address) balances to memoise. 0 disables the cache.
	BALANCE_CACHE_SIZE int `yaml:"balance_cache_size"`
}

// DefaultAppConfig matches the settings a fresh ledger starts with.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DIFFICULTY:         2,
		MINING_REWARD:      100,
		BALANCE_CACHE_SIZE: 1024,
	}
}

func (c AppConfig) Validate() error {
	// Kept in sync with utils.MaxDifficulty, config cannot import utils.
	if c.DIFFICULTY < 0 || c.DIFFICULTY > 64 {
		return errors.Wrapf(model.ErrInvalidConfig, "difficulty %d out of range [0, 64]", c.DIFFICULTY)
	}
	if c.MINING_REWARD < 0 {
		return errors.Wrapf(model.ErrInvalidConfig, "mining reward %v is negative", c.MINING_REWARD)
	}
	if c.BALANCE_CACHE_SIZE < 0 {
		return errors.Wrapf(model.ErrInvalidConfig, "balance cache size %d is negative", c.BALANCE_CACHE_SIZE)
	}
	return nil
}

// ParseAppConfig reads a YAML config. Keys absent from the file keep their default value.
func ParseAppConfig(path string) (AppConfig, error) {
	c := DefaultAppConfig()
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(yamlFile, &c); err != nil {
		return c, errors.Wrapf(model.ErrInvalidConfig, "config %s: %v", path, err)
	}
	return c, c.Validate()
}
