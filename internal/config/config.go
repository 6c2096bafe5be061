package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Data source kinds.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Data      DataConfig
	Database  DatabaseConfig
	Dashboard DashboardConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// LogConfig holds logging configuration. An empty level means the
// environment default.
type LogConfig struct {
	Level string
}

// DataConfig locates the fact tables and the lookup sheet.
type DataConfig struct {
	Source      string
	Dir         string
	RegionsFile string
	TrendsFile  string
	DetailsFile string
	LookupFile  string
	LookupSheet string
}

// Path resolves a data file name against Dir.
func (d DataConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// DatabaseConfig holds PostgreSQL connection configuration, used when the
// tables are served from a database instead of files.
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	PoolMin      int
	PoolMax      int
	RegionsTable string
	TrendsTable  string
	DetailsTable string
	LookupTable  string
}

// DashboardConfig holds selection defaults and presentation settings.
type DashboardConfig struct {
	DefaultNation  string
	DefaultBenefit string
	RankingTopN    int
	InsightsFile   string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// RateLimitConfig bounds request throughput. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	v.SetDefault("DATA_SOURCE", SourceFile)
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("REGIONS_FILE", "optimized_level_1.parquet")
	v.SetDefault("TRENDS_FILE", "optimized_level_2.parquet")
	v.SetDefault("DETAILS_FILE", "optimized_level_3.parquet")
	v.SetDefault("LOOKUP_FILE", "lookups.xlsx")
	v.SetDefault("LOOKUP_SHEET", "")

	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "cobenefits")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 4)
	v.SetDefault("DB_REGIONS_TABLE", "level_1")
	v.SetDefault("DB_TRENDS_TABLE", "level_2")
	v.SetDefault("DB_DETAILS_TABLE", "level_3")
	v.SetDefault("DB_LOOKUP_TABLE", "lookups")

	v.SetDefault("DEFAULT_NATION", "United Kingdom (All)")
	v.SetDefault("DEFAULT_BENEFIT", "physical_activity")
	v.SetDefault("RANKING_TOP_N", 10)
	v.SetDefault("INSIGHTS_FILE", "")

	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Data: DataConfig{
			Source:      strings.ToLower(strings.TrimSpace(v.GetString("DATA_SOURCE"))),
			Dir:         v.GetString("DATA_DIR"),
			RegionsFile: v.GetString("REGIONS_FILE"),
			TrendsFile:  v.GetString("TRENDS_FILE"),
			DetailsFile: v.GetString("DETAILS_FILE"),
			LookupFile:  v.GetString("LOOKUP_FILE"),
			LookupSheet: v.GetString("LOOKUP_SHEET"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			PoolMin:      v.GetInt("DB_POOL_MIN"),
			PoolMax:      v.GetInt("DB_POOL_MAX"),
			RegionsTable: v.GetString("DB_REGIONS_TABLE"),
			TrendsTable:  v.GetString("DB_TRENDS_TABLE"),
			DetailsTable: v.GetString("DB_DETAILS_TABLE"),
			LookupTable:  v.GetString("DB_LOOKUP_TABLE"),
		},
		Dashboard: DashboardConfig{
			DefaultNation:  v.GetString("DEFAULT_NATION"),
			DefaultBenefit: v.GetString("DEFAULT_BENEFIT"),
			RankingTopN:    v.GetInt("RANKING_TOP_N"),
			InsightsFile:   v.GetString("INSIGHTS_FILE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Data.Source {
	case SourceFile:
		if c.Data.RegionsFile == "" {
			return fmt.Errorf("REGIONS_FILE is required")
		}
		if c.Data.TrendsFile == "" {
			return fmt.Errorf("TRENDS_FILE is required")
		}
		if c.Data.LookupFile == "" {
			return fmt.Errorf("LOOKUP_FILE is required")
		}
	case SourcePostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: %s, %s", SourceFile, SourcePostgres)
	}

	if c.Dashboard.RankingTopN < 1 {
		return fmt.Errorf("RANKING_TOP_N must be at least 1")
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

func (d DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	if d.RegionsTable == "" || d.TrendsTable == "" || d.LookupTable == "" {
		return fmt.Errorf("DB_REGIONS_TABLE, DB_TRENDS_TABLE and DB_LOOKUP_TABLE are required")
	}
	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
