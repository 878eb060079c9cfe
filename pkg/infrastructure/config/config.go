package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vsinha/shopfloor/pkg/domain/entities"
)

// EnvPrefix namespaces environment overrides: SHOPFLOOR_DATABASE_TYPE, ...
const EnvPrefix = "SHOPFLOOR"

// Config holds runtime configuration loaded from file, environment and defaults
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Planning PlanningConfig `mapstructure:"planning"`
}

type DatabaseConfig struct {
	Type string `mapstructure:"type"` // memory | bolt | badger | sqlite
	Path string `mapstructure:"path"`
}

// CatalogConfig points at an optional YAML catalog; empty means built-in
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type PlanningConfig struct {
	LowStockAlerts bool `mapstructure:"low_stock_alerts"`
}

// DefaultDataPath is where stores live unless configured otherwise
func DefaultDataPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".shopfloor", "inventory")
	}
	return filepath.Join(".shopfloor", "inventory")
}

// Load reads configuration. path may be empty, in which case only the
// environment and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.type", "bolt")
	v.SetDefault("database.path", DefaultDataPath())
	v.SetDefault("catalog.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("planning.low_stock_alerts", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &entities.ValidationError{
				Detail: "failed to read config file",
				Fields: map[string]string{"config": err.Error()},
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
