package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.Data.Source != SourceFile {
		t.Errorf("Expected file data source, got %s", cfg.Data.Source)
	}
	if cfg.Data.RegionsFile != "optimized_level_1.parquet" {
		t.Errorf("Expected default regions file, got %s", cfg.Data.RegionsFile)
	}
	if cfg.Data.LookupFile != "lookups.xlsx" {
		t.Errorf("Expected default lookup file, got %s", cfg.Data.LookupFile)
	}
	if cfg.Dashboard.DefaultNation != "United Kingdom (All)" {
		t.Errorf("Expected default nation United Kingdom (All), got %s", cfg.Dashboard.DefaultNation)
	}
	if cfg.Dashboard.DefaultBenefit != "physical_activity" {
		t.Errorf("Expected default benefit physical_activity, got %s", cfg.Dashboard.DefaultBenefit)
	}
	if cfg.Dashboard.RankingTopN != 10 {
		t.Errorf("Expected ranking top N 10, got %d", cfg.Dashboard.RankingTopN)
	}
	if cfg.RateLimit.RPS != 0 {
		t.Errorf("Expected rate limiting disabled by default, got %f", cfg.RateLimit.RPS)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATA_DIR", "/srv/atlas")
	t.Setenv("REGIONS_FILE", "level1.csv")
	t.Setenv("DEFAULT_NATION", "Wales")
	t.Setenv("RANKING_TOP_N", "5")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("Expected env production, got %s", cfg.Server.Env)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.Log.Level)
	}
	if got := cfg.Data.Path(cfg.Data.RegionsFile); got != filepath.Join("/srv/atlas", "level1.csv") {
		t.Errorf("Expected regions path under data dir, got %s", got)
	}
	if cfg.Dashboard.DefaultNation != "Wales" {
		t.Errorf("Expected default nation Wales, got %s", cfg.Dashboard.DefaultNation)
	}
	if cfg.Dashboard.RankingTopN != 5 {
		t.Errorf("Expected ranking top N 5, got %d", cfg.Dashboard.RankingTopN)
	}
	if cfg.RateLimit.RPS != 2.5 || cfg.RateLimit.Burst != 4 {
		t.Errorf("Expected rate limit 2.5/4, got %f/%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("DATA_SOURCE", "postgres")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_PASSWORD is missing for the postgres source")
	}

	t.Setenv("DB_PASSWORD", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Database.RegionsTable != "level_1" {
		t.Errorf("Expected default regions table level_1, got %s", cfg.Database.RegionsTable)
	}
}

func TestLoad_UnknownSource(t *testing.T) {
	clearConfigEnvVars(t)
	t.Setenv("DATA_SOURCE", "s3")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown data source")
	}
}

func TestDataConfig_Path(t *testing.T) {
	d := DataConfig{Dir: "data"}

	if got := d.Path("lookups.xlsx"); got != filepath.Join("data", "lookups.xlsx") {
		t.Errorf("Expected relative path joined to dir, got %s", got)
	}
	if got := d.Path("/abs/lookups.xlsx"); got != "/abs/lookups.xlsx" {
		t.Errorf("Expected absolute path unchanged, got %s", got)
	}
	if got := d.Path(""); got != "" {
		t.Errorf("Expected empty path unchanged, got %s", got)
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Data.Source = SourcePostgres
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "missing regions file", mutate: func(c *Config) { c.Data.RegionsFile = "" }},
		{name: "missing trends file", mutate: func(c *Config) { c.Data.TrendsFile = "" }},
		{name: "missing lookup file", mutate: func(c *Config) { c.Data.LookupFile = "" }},
		{name: "zero top N", mutate: func(c *Config) { c.Dashboard.RankingTopN = 0 }},
		{name: "negative rate", mutate: func(c *Config) { c.RateLimit.RPS = -1 }},
		{name: "rate without burst", mutate: func(c *Config) { c.RateLimit.RPS = 1; c.RateLimit.Burst = 0 }},
		{name: "missing CORS origins", mutate: func(c *Config) { c.CORS.Origins = []string{} }},
		{name: "postgres missing host", mutate: func(c *Config) { c.Data.Source = SourcePostgres; c.Database.Host = "" }},
		{name: "postgres missing table", mutate: func(c *Config) { c.Data.Source = SourcePostgres; c.Database.TrendsTable = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestValidate_DetailsFileOptional(t *testing.T) {
	cfg := validConfig()
	cfg.Data.DetailsFile = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected details file to be optional, got %v", err)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "multiple origins", input: "http://localhost:3000,http://localhost:3001", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "origins with spaces", input: " http://localhost:3000 , http://localhost:3001 ", expect: []string{"http://localhost:3000", "http://localhost:3001"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		Data: DataConfig{
			Source:      SourceFile,
			Dir:         "data",
			RegionsFile: "optimized_level_1.parquet",
			TrendsFile:  "optimized_level_2.parquet",
			DetailsFile: "optimized_level_3.parquet",
			LookupFile:  "lookups.xlsx",
		},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "cobenefits",
			User: "postgres", Password: "postgres", PoolMin: 1, PoolMax: 4,
			RegionsTable: "level_1", TrendsTable: "level_2", DetailsTable: "level_3", LookupTable: "lookups",
		},
		Dashboard: DashboardConfig{RankingTopN: 10},
		CORS:      CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
}

// clearConfigEnvVars unsets every variable Load reads for the duration of the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "CORS_ORIGINS",
		"DATA_SOURCE", "DATA_DIR", "REGIONS_FILE", "TRENDS_FILE", "DETAILS_FILE", "LOOKUP_FILE", "LOOKUP_SHEET",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_POOL_MIN", "DB_POOL_MAX",
		"DB_REGIONS_TABLE", "DB_TRENDS_TABLE", "DB_DETAILS_TABLE", "DB_LOOKUP_TABLE",
		"DEFAULT_NATION", "DEFAULT_BENEFIT", "RANKING_TOP_N", "INSIGHTS_FILE",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		if value, ok := os.LookupEnv(key); ok {
			t.Setenv(key, value)
			os.Unsetenv(key)
		}
	}
}
