package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tbenoit3/workflow-vigil/internal/adapter/fixture"
	"github.com/tbenoit3/workflow-vigil/internal/adapter/github"
	"github.com/tbenoit3/workflow-vigil/internal/api"
	"github.com/tbenoit3/workflow-vigil/internal/config"
	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/scheduler"
	"github.com/tbenoit3/workflow-vigil/internal/storage/sqlite"
)

const schemaPath = "schemas/target_v1.json"

func main() {
	// Parse flags
	cfg := parseFlags()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting workflow-vigil server...")
	log.Printf("Config: port=%d, target-dir=%s, adapter=%s", cfg.Port, cfg.TargetDirectory, cfg.AdapterType)

	// Create run history adapter
	var runProvider eval.RunProvider
	var fixtureAdapter *fixture.Adapter
	switch cfg.AdapterType {
	case "github":
		ghConfig := github.DefaultConfig(cfg.GitHubToken)
		ghConfig.BaseURL = cfg.GitHubURL
		runProvider = github.NewAdapter(ghConfig)
		log.Printf("Using GitHub adapter: %s", cfg.GitHubURL)

	case "fixture":
		fixtureAdapter = fixture.NewAdapter()
		runProvider = fixtureAdapter
		if cfg.FixtureDir != "" {
			log.Printf("Using fixture adapter with fixtures from: %s", cfg.FixtureDir)
		} else {
			log.Printf("Using fixture adapter (no fixtures directory specified)")
		}

	default:
		log.Fatalf("Unknown adapter type: %s", cfg.AdapterType)
	}

	// Create evaluator and scheduler
	evaluator := eval.NewEvaluator(runProvider)
	sched := scheduler.NewScheduler(evaluator, cfg.TargetDirectory, schemaPath)

	// Attach audit storage if configured
	if cfg.AuditDBPath != "" {
		store, err := sqlite.NewStore(cfg.AuditDBPath)
		if err != nil {
			log.Fatalf("Failed to open audit storage: %v", err)
		}
		defer store.Close()
		sched.SetAuditStorage(store)
		log.Printf("Audit storage enabled: %s", cfg.AuditDBPath)
	}

	// Load targets
	if err := sched.LoadTargets(); err != nil {
		log.Fatalf("Failed to load targets: %v", err)
	}

	// Fixture histories are keyed by target ID: <fixture-dir>/<id>.json
	if fixtureAdapter != nil && cfg.FixtureDir != "" {
		loadFixtures(fixtureAdapter, sched, cfg.FixtureDir)
	}

	// Start scheduler
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create and start HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	apiServer := api.NewServer(sched, addr)

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- apiServer.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)

	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		log.Println("Shutting down server...")
		if err := apiServer.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}

		log.Println("Stopping scheduler...")
		sched.Stop()

		log.Println("Shutdown complete")
	}
}

func loadFixtures(adapter *fixture.Adapter, sched *scheduler.Scheduler, dir string) {
	for _, tf := range sched.GetTargets() {
		path := filepath.Join(dir, tf.Target.Metadata.ID+".json")
		if _, err := os.Stat(path); err != nil {
			log.Printf("No fixture for target %s (looked for %s)", tf.Target.Metadata.ID, path)
			continue
		}
		key := fixture.Key(tf.Target.Query())
		if err := adapter.LoadFixture(key, path); err != nil {
			log.Fatalf("Failed to load fixture %s: %v", path, err)
		}
		log.Printf("Loaded fixture for target %s from %s", tf.Target.Metadata.ID, path)
	}
}

func parseFlags() config.Config {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.Host, "host", cfg.Host, "HTTP server host")
	flag.StringVar(&cfg.TargetDirectory, "target-dir", cfg.TargetDirectory, "Directory containing workflow target YAML files")
	flag.StringVar(&cfg.AdapterType, "adapter", cfg.AdapterType, "Run history adapter type (github|fixture)")
	flag.StringVar(&cfg.GitHubToken, "github-token", os.Getenv("GITHUB_TOKEN"), "GitHub API token (required for github adapter)")
	flag.StringVar(&cfg.GitHubURL, "github-url", cfg.GitHubURL, "GitHub API base URL")
	flag.StringVar(&cfg.FixtureDir, "fixtures", cfg.FixtureDir, "Directory containing run history fixtures")
	flag.StringVar(&cfg.AuditDBPath, "audit-db", cfg.AuditDBPath, "Path to the SQLite audit database (empty disables auditing)")

	flag.Parse()

	return cfg
}
