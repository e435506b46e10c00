// Command enrich-worker runs the artist enrichment queue processor, either
// as an HTTP service or as a one-shot invocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/goprod/enrich-worker/internal/config"
	"github.com/goprod/enrich-worker/internal/db"
	"github.com/goprod/enrich-worker/internal/enrich"
	"github.com/goprod/enrich-worker/internal/songstats"
	"github.com/goprod/enrich-worker/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	once := flag.Bool("once", false, "process one batch and exit instead of serving HTTP")
	company := flag.String("company", "", "company ID for -once mode")
	batchSize := flag.Int("batch", enrich.DefaultBatchSize, "batch size for -once mode")
	dryRun := flag.Bool("dry-run", false, "mark claimed entries done without fetching")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	client := songstats.NewClient(cfg.SongstatsAPIKey, cfg.SongstatsBaseURL)
	processor := enrich.NewProcessor(
		database.Queue(),
		database.Artists(),
		client,
		enrich.WithRateDelay(cfg.RateDelay),
	)

	if *once {
		return runOnce(ctx, processor, *company, *batchSize, *dryRun)
	}

	server := web.NewServer(web.ServerConfig{
		Addr:      cfg.Addr,
		Processor: processor,
		Queue:     database.Queue(),
	})
	return server.Run()
}

// runOnce executes a single invocation, for schedulers that prefer exec
// over HTTP.
func runOnce(ctx context.Context, processor *enrich.Processor, company string, batchSize int, dryRun bool) error {
	if company == "" {
		return fmt.Errorf("-once requires -company")
	}
	companyID, err := uuid.Parse(company)
	if err != nil {
		return fmt.Errorf("invalid company ID %q: %w", company, err)
	}

	result, err := processor.Run(ctx, enrich.Request{
		CompanyID: companyID,
		BatchSize: batchSize,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}

	log.Printf("locked=%d processed=%d succeeded=%d failed=%d",
		result.Locked, result.Processed, result.Succeeded, result.Failed)
	return nil
}
