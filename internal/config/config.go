package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete saferoute configuration.
type Config struct {
	Version   string          `yaml:"version"`
	Exposure  ExposureConfig  `yaml:"exposure"`
	Detour    DetourConfig    `yaml:"detour"`
	Density   DensityConfig   `yaml:"density"`
	Store     StoreConfig     `yaml:"store"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	API       APIConfig       `yaml:"api"`
	Logging   LoggingConfig   `yaml:"logging"`
	Health    HealthConfig    `yaml:"health"`
}

// ExposureConfig holds the C5 tunables.
type ExposureConfig struct {
	InfluenceRadiusM float64 `yaml:"influence_radius_m"`
	CriticalHours    float64 `yaml:"critical_hours"`
	RetentionDays    int     `yaml:"retention_days"`
}

// DetourConfig holds the C6 tunables.
type DetourConfig struct {
	DetectionRadiusM float64 `yaml:"detection_radius_m"`
	OffsetDeg        float64 `yaml:"detour_offset_deg"`
	TriggerScore     float64 `yaml:"detour_trigger_score"`
}

// DensityConfig holds the C7 tunables.
type DensityConfig struct {
	GridCellM float64 `yaml:"grid_cell_m"`
}

// StoreConfig selects and configures the crime store realization.
type StoreConfig struct {
	Backend  string         `yaml:"backend"` // "postgres", "neo4j", or "memory"
	Postgres PostgresConfig `yaml:"postgres"`
	Neo4j    Neo4jConfig    `yaml:"neo4j"`
}

type PostgresConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"max_conns"`
	MinConns    int32  `yaml:"min_conns"`
	ConnTimeout string `yaml:"conn_timeout"`
}

type Neo4jConfig struct {
	URI         string `yaml:"uri"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	MaxPoolSize int    `yaml:"max_pool_size"`
	ConnTimeout string `yaml:"conn_timeout"`
}

// OracleConfig configures the street-route oracle adapter.
type OracleConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Mode    string `yaml:"mode"` // "walking", "cycling", or "driving"
}

// RedisConfig configures the crime-store caching decorator.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

type KafkaConfig struct {
	BootstrapServers []string `yaml:"bootstrap_servers"`
	Topic            string   `yaml:"topic"`
	GroupID          string   `yaml:"group_id"`
	ClientID         string   `yaml:"client_id"`
}

type APIConfig struct {
	Port int        `yaml:"port"`
	Host string     `yaml:"host"`
	Auth AuthConfig `yaml:"auth"`
	CORS CORSConfig `yaml:"cors"`
}

type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads and parses the configuration file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	expandEnv(cfg)

	return cfg, nil
}

// expandEnv replaces ${VAR} placeholders with environment variables.
func expandEnv(cfg *Config) {
	cfg.Store.Neo4j.Password = os.ExpandEnv(cfg.Store.Neo4j.Password)
	cfg.Store.Postgres.DSN = os.ExpandEnv(cfg.Store.Postgres.DSN)
	cfg.Redis.Password = os.ExpandEnv(cfg.Redis.Password)
	cfg.API.Auth.JWTSecret = os.ExpandEnv(cfg.API.Auth.JWTSecret)
	cfg.Oracle.APIKey = os.ExpandEnv(cfg.Oracle.APIKey)
}

// GetDuration parses a duration string.
func GetDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

// Default returns the spec-mandated default configuration, used when
// no config file is supplied.
func Default() *Config {
	return &Config{
		Version: "1",
		Exposure: ExposureConfig{
			InfluenceRadiusM: 100,
			CriticalHours:    24,
			RetentionDays:    90,
		},
		Detour: DetourConfig{
			DetectionRadiusM: 200,
			OffsetDeg:        0.003,
			TriggerScore:     0.3,
		},
		Density: DensityConfig{
			GridCellM: 100,
		},
		Store: StoreConfig{Backend: "memory"},
		Oracle: OracleConfig{
			Mode: "walking",
		},
		API: APIConfig{
			Port: 8080,
			Host: "0.0.0.0",
			CORS: CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Health:  HealthConfig{Enabled: true, Path: "/healthz"},
	}
}
