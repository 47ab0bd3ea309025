package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs comprehensive validation of the configuration.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	if err := c.validateExposure(); err != nil {
		return fmt.Errorf("exposure config error: %v", err)
	}

	if err := c.validateDetour(); err != nil {
		return fmt.Errorf("detour config error: %v", err)
	}

	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store config error: %v", err)
	}

	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config error: %v", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config error: %v", err)
	}

	return nil
}

func (c *Config) validateExposure() error {
	if c.Exposure.InfluenceRadiusM <= 0 {
		return fmt.Errorf("influence_radius_m must be greater than 0")
	}
	if c.Exposure.CriticalHours <= 0 {
		return fmt.Errorf("critical_hours must be greater than 0")
	}
	if c.Exposure.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be greater than 0")
	}
	return nil
}

func (c *Config) validateDetour() error {
	if c.Detour.DetectionRadiusM <= 0 {
		return fmt.Errorf("detection_radius_m must be greater than 0")
	}
	if c.Detour.OffsetDeg <= 0 {
		return fmt.Errorf("detour_offset_deg must be greater than 0")
	}
	if c.Detour.TriggerScore < 0 {
		return fmt.Errorf("detour_trigger_score must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required")
		}
	case "neo4j":
		if c.Store.Neo4j.URI == "" {
			return fmt.Errorf("neo4j.uri is required")
		}
		if _, err := url.Parse(c.Store.Neo4j.URI); err != nil {
			return fmt.Errorf("invalid neo4j.uri: %v", err)
		}
		if c.Store.Neo4j.MaxPoolSize <= 0 {
			return fmt.Errorf("neo4j.max_pool_size must be greater than 0")
		}
	default:
		return fmt.Errorf("unknown store backend: %s (must be memory, postgres, or neo4j)", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.API.Auth.Enabled && c.API.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required when auth is enabled")
	}

	if c.API.CORS.Enabled && len(c.API.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins is required when CORS is enabled")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
	}

	format := strings.ToLower(c.Logging.Format)
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[format] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", format)
	}

	return nil
}
