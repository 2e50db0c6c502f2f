package config

import (
	"fmt"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

type Config struct {
	Port               int
	GinMode            string
	StorageDriver      string
	DiagramsDir        string
	DatabaseURL        string
	SQLitePath         string
	MySQLURL           string
	SchemaDatabase     string
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("STORAGE_DRIVER", StorageFile)
	v.SetDefault("DIAGRAMS_DIR", "diagrams")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "diagrams.db")
	v.SetDefault("MYSQL_URL", "")
	v.SetDefault("SCHEMA_DATABASE", "er_diagram")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DiagramsDir:    v.GetString("DIAGRAMS_DIR"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		MySQLURL:       v.GetString("MYSQL_URL"),
		SchemaDatabase: v.GetString("SCHEMA_DATABASE"),
	}
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.StorageDriver {
	case StorageFile:
		if c.DiagramsDir == "" {
			return fmt.Errorf("DIAGRAMS_DIR is required for the file storage driver")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite storage driver")
		}
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: must be 'file', 'postgres' or 'sqlite'", c.StorageDriver)
	}
	return nil
}

// AllowAllOrigins reports whether CORS is open to any origin.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.CORSAllowedOrigins) == 0
}
