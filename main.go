// package main provides the entry point for the compliance-backend
// microservice: it wires the database, the benchmark engine runner, the scan
// orchestrator, the Kafka event processor, and the REST/GraphQL API.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/scanguard/compliance-backend/database"
	"github.com/scanguard/compliance-backend/events/modules/scans"
	"github.com/scanguard/compliance-backend/internal/ai"
	"github.com/scanguard/compliance-backend/internal/api"
	"github.com/scanguard/compliance-backend/internal/benchmark"
	"github.com/scanguard/compliance-backend/internal/engine"
	"github.com/scanguard/compliance-backend/internal/kafka"
	"github.com/scanguard/compliance-backend/internal/scanner"
	"github.com/scanguard/compliance-backend/util"
)

func main() {
	// Initialize database connection
	db := database.InitializeDatabase()
	logger := database.InitLogger()

	// Benchmark catalog: built-in defaults, optionally overlaid from a file
	catalog, err := benchmark.Load(os.Getenv("BENCHMARK_CATALOG"))
	if err != nil {
		log.Fatalf("Failed to load benchmark catalog: %v", err)
	}

	// Engine runner
	engineTimeout, _ := time.ParseDuration(util.GetEnvDefault("ENGINE_TIMEOUT", "10m"))
	runner := engine.NewCLIRunner(os.Getenv("ENGINE_BINARY"), engineTimeout, logger)

	// Optional Gemini enrichment for failed controls
	var enricher ai.Enricher = ai.Noop{}
	if apiKey := os.Getenv("GEMINI_API_KEY"); util.IsNotEmpty(apiKey) {
		gemini, err := ai.NewGeminiEnricher(context.Background(), apiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		defer gemini.Close()
		enricher = gemini
	}

	// Optional Kafka producer for scan-finished events
	var notifier scanner.Notifier
	if brokers := util.SplitCSVEnv(os.Getenv("KAFKA_BROKERS")); len(brokers) > 0 {
		producer := scans.NewScanProducer(brokers, util.GetEnvDefault("KAFKA_RESULT_TOPIC", "scan-results"))
		defer producer.Close()
		notifier = producer
	}

	budget, _ := time.ParseDuration(util.GetEnvDefault("SCAN_BUDGET", "30m"))
	orch := scanner.New(
		scanner.NewArangoStore(db),
		runner,
		enricher,
		notifier,
		scanner.Config{
			Catalog:       catalog,
			Budget:        budget,
			EngineVersion: os.Getenv("ENGINE_VERSION"),
		},
		logger,
	)

	// Kafka event processor for scan requests
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := kafka.RunEventProcessor(ctx, orch); err != nil {
		log.Printf("Kafka event processor unavailable: %v", err)
	}

	// Create Fiber app with REST and GraphQL routes
	app := api.NewFiberApp(db, orch)

	// Get port from environment or default to 3000
	port := util.GetEnvDefault("MS_PORT", "3000")

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
