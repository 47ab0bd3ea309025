package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prompt-general/saferoute/internal/api"
	"github.com/prompt-general/saferoute/internal/config"
	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/density"
	"github.com/prompt-general/saferoute/internal/detour"
	"github.com/prompt-general/saferoute/internal/exposure"
	"github.com/prompt-general/saferoute/internal/health"
	"github.com/prompt-general/saferoute/internal/oracle"
	"github.com/prompt-general/saferoute/internal/routing"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path (defaults to built-in defaults if omitted)")
		showVersion = flag.Bool("version", false, "Show version information")
		showHelpFl  = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *showHelpFl {
		showHelp()
		return
	}

	if *showVersion {
		printVersion()
		return
	}

	log.Printf("starting saferoute v%s (commit: %s, built: %s)", version, commit, date)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := buildCrimeStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize crime store: %v", err)
	}
	defer closeStore()

	routeOracle := buildOracle(cfg)

	orchestrator := routing.New(store, routeOracle, routing.Config{
		Exposure: exposureConfigFrom(cfg),
		Detour:   detourConfigFrom(cfg),
		Density:  densityConfigFrom(cfg),
		Mode:     oracle.Mode(cfg.Oracle.Mode),
	})

	checker := health.NewChecker()
	checker.Register(&health.CrimeStoreCheck{Store: store})
	checker.Register(&health.OracleCheck{Oracle: routeOracle})

	gateway := api.NewGateway(gatewayConfigFrom(cfg), orchestrator, checker)

	go func() {
		if err := gateway.Start(); err != nil {
			log.Printf("gateway stopped: %v", err)
		}
	}()

	waitForShutdown(cancel, gateway)
}

func showHelp() {
	fmt.Printf(`saferoute - Crime-aware pedestrian routing service

Usage:
  saferoute [flags]

Flags:
  -config string
        Configuration file path (defaults to built-in defaults if omitted)
  -version
        Show version information
  -help
        Show this help message

Examples:
  saferoute                             # Start with built-in defaults
  saferoute -config config/prod.yaml    # Start with a config file
  saferoute -version                    # Show version
`)
}

func printVersion() {
	fmt.Printf("saferoute version %s\n", version)
	fmt.Printf("commit: %s\n", commit)
	fmt.Printf("built: %s\n", date)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func buildCrimeStore(ctx context.Context, cfg *config.Config) (crimestore.CrimeStore, func(), error) {
	var (
		store crimestore.CrimeStore
		close func()
	)

	retention := retentionWindowFrom(cfg)

	switch cfg.Store.Backend {
	case "postgres":
		connTimeout, err := parseDurationOrDefault(cfg.Store.Postgres.ConnTimeout, 5*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("store.postgres.conn_timeout: %w", err)
		}
		pg, err := crimestore.NewPostgresCrimeStore(ctx, crimestore.PostgresConfig{
			DSN:             cfg.Store.Postgres.DSN,
			MaxConns:        cfg.Store.Postgres.MaxConns,
			MinConns:        cfg.Store.Postgres.MinConns,
			ConnTimeout:     connTimeout,
			RetentionWindow: retention,
		})
		if err != nil {
			return nil, nil, err
		}
		store, close = pg, pg.Close

	case "neo4j":
		connTimeout, err := parseDurationOrDefault(cfg.Store.Neo4j.ConnTimeout, 10*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("store.neo4j.conn_timeout: %w", err)
		}
		n4j, err := crimestore.NewNeo4jCrimeStore(ctx, crimestore.Neo4jConfig{
			URI:             cfg.Store.Neo4j.URI,
			Username:        cfg.Store.Neo4j.Username,
			Password:        cfg.Store.Neo4j.Password,
			MaxPoolSize:     cfg.Store.Neo4j.MaxPoolSize,
			ConnTimeout:     connTimeout,
			RetentionWindow: retention,
		})
		if err != nil {
			return nil, nil, err
		}
		store, close = n4j, func() { _ = n4j.Close(ctx) }

	default:
		mem := crimestore.NewInMemoryCrimeStore(nil)
		mem.SetRetentionWindow(retention)
		store, close = mem, func() {}
	}

	if cfg.Redis.Enabled {
		ttl, err := parseDurationOrDefault(cfg.Redis.TTL, 30*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("redis.ttl: %w", err)
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		inner, innerClose := store, close
		store = crimestore.NewCachedCrimeStore(inner, client, "saferoute", ttl)
		close = func() {
			_ = client.Close()
			innerClose()
		}
	}

	return store, close, nil
}

func buildOracle(cfg *config.Config) oracle.RouteOracle {
	if cfg.Oracle.BaseURL == "" {
		return oracle.NewInMemoryRouteOracle()
	}
	return oracle.NewHTTPRouteOracle(cfg.Oracle.BaseURL, cfg.Oracle.APIKey)
}

func exposureConfigFrom(cfg *config.Config) exposure.Config {
	return exposure.Config{
		InfluenceRadiusM: cfg.Exposure.InfluenceRadiusM,
		CriticalHours:    cfg.Exposure.CriticalHours,
	}
}

func detourConfigFrom(cfg *config.Config) detour.Config {
	d := detour.DefaultConfig()
	d.DetectionRadiusM = cfg.Detour.DetectionRadiusM
	d.OffsetDeg = cfg.Detour.OffsetDeg
	d.TriggerScore = cfg.Detour.TriggerScore
	return d
}

func densityConfigFrom(cfg *config.Config) density.Config {
	return density.Config{CellSizeM: cfg.Density.GridCellM}
}

// retentionWindowFrom converts the configured retention_days tunable
// into the duration the crime store bounds its queries by.
func retentionWindowFrom(cfg *config.Config) time.Duration {
	if cfg.Exposure.RetentionDays <= 0 {
		return crimestore.RetentionWindow
	}
	return time.Duration(cfg.Exposure.RetentionDays) * 24 * time.Hour
}

func gatewayConfigFrom(cfg *config.Config) api.GatewayConfig {
	g := api.DefaultGatewayConfig()
	g.Host = cfg.API.Host
	g.Port = cfg.API.Port
	g.EnableCORS = cfg.API.CORS.Enabled
	if len(cfg.API.CORS.AllowedOrigins) > 0 {
		g.AllowedOrigins = cfg.API.CORS.AllowedOrigins
	}
	g.EnableAuth = cfg.API.Auth.Enabled
	g.JWTSecret = cfg.API.Auth.JWTSecret
	return g
}

func parseDurationOrDefault(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return config.GetDuration(s)
}

func waitForShutdown(cancel context.CancelFunc, gateway *api.Gateway) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	log.Println("shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		log.Printf("error during gateway shutdown: %v", err)
	}

	cancel()
	log.Println("saferoute stopped")
}
