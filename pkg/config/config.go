/*
Package config manages the TOML config for termserve.

	[suggest]
	indexes = ["indexes/main"]
	fields = []
	limit = 10
	optimize = true

	[spell]
	engine = "dictionary"
	dict_path = "data/"

	[server]
	max_limit = 64
	max_query_len = 256

	[cli]
	default_limit = 10
	show_frequency = true

Unknown keys are rejected so that typos surface instead of silently falling back to defaults.
*/
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// ErrUnknownKeys is returned when a config file holds keys no option matches.
var ErrUnknownKeys = errors.New("unknown config keys")

// Config holds the entire config structure
type Config struct {
	Suggest SuggestConfig `toml:"suggest"`
	Spell   SpellConfig   `toml:"spell"`
	Server  ServerConfig  `toml:"server"`
	CLI     CliConfig     `toml:"cli"`
}

// SuggestConfig mirrors suggest.Options.
type SuggestConfig struct {
	Indexes  []string `toml:"indexes,omitempty"`
	Fields   []string `toml:"fields,omitempty"`
	Limit    int      `toml:"limit"`
	Optimize bool     `toml:"optimize"`
	Debug    bool     `toml:"debug"`
}

// SpellConfig picks and tunes the spelling corrector.
type SpellConfig struct {
	// Engine is one of "dictionary", "fuzzy", "redisearch" or "none".
	Engine         string `toml:"engine"`
	DictPath       string `toml:"dict_path"`
	MaxWords       int    `toml:"max_words"`
	MaxDistance    int    `toml:"max_distance"`
	MaxSuggestions int    `toml:"max_suggestions"`
	MinWordLength  int    `toml:"min_word_length"`
	RedisAddr      string `toml:"redis_addr"`
	RedisIndex     string `toml:"redis_index"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit    int `toml:"max_limit"`
	MaxQueryLen int `toml:"max_query_len"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit  int  `toml:"default_limit"`
	ShowFrequency bool `toml:"show_frequency"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Suggest: SuggestConfig{
			Limit:    suggest.DefaultLimit,
			Optimize: true,
		},
		Spell: SpellConfig{
			Engine:         EngineDictionary,
			MaxWords:       50000,
			MaxDistance:    2,
			MaxSuggestions: 5,
			MinWordLength:  3,
			RedisAddr:      "localhost:6379",
		},
		Server: ServerConfig{
			MaxLimit:    64,
			MaxQueryLen: 256,
		},
		CLI: CliConfig{
			DefaultLimit:  suggest.DefaultLimit,
			ShowFrequency: true,
		},
	}
}

// GetConfigDir returns the config directory, falling back to the executable's directory when
// the home config directory is not writable.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	} else {
		log.Errorf("Failed to get home directory: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// InitConfig loads config from file or creates a default one if missing.
// A file that exists but cannot be parsed is an error.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Missing keys keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	unknown, err := utils.LoadTOMLFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", suggest.ErrConfiguration, configPath, err)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %w in %s: %s",
			suggest.ErrConfiguration, ErrUnknownKeys, configPath, strings.Join(unknown, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Validate checks values a TOML decoder accepts but the services do not.
func (c *Config) Validate() error {
	switch c.Spell.Engine {
	case EngineDictionary, EngineFuzzy, EngineRediSearch, EngineNone:
	default:
		return fmt.Errorf("%w: unknown spell engine %q", suggest.ErrConfiguration, c.Spell.Engine)
	}
	if c.Suggest.Limit < 0 {
		return fmt.Errorf("%w: suggest.limit must be positive", suggest.ErrConfiguration)
	}
	if c.Server.MaxLimit <= 0 {
		return fmt.Errorf("%w: server.max_limit must be positive", suggest.ErrConfiguration)
	}
	// ranks go out as uint16
	if c.Server.MaxLimit > math.MaxUint16 {
		return fmt.Errorf("%w: server.max_limit must be at most %d", suggest.ErrConfiguration, math.MaxUint16)
	}
	return nil
}

// SuggestOptions builds suggester options from the [suggest] section. The speller and
// opener are left for the caller.
func (c *Config) SuggestOptions() suggest.Options {
	opts := suggest.DefaultOptions()
	opts.Indexes = append([]string(nil), c.Suggest.Indexes...)
	opts.Fields = append([]string(nil), c.Suggest.Fields...)
	opts.Limit = c.Suggest.Limit
	opts.Optimize = c.Suggest.Optimize
	opts.Debug = c.Suggest.Debug
	return opts
}
