// Package enrich implements the artist enrichment batch processor: claim a
// batch of queue entries, fetch and normalize Songstats metadata per entry,
// persist it, and mark each entry terminal.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/goprod/enrich-worker/internal/db"
	"github.com/goprod/enrich-worker/internal/songstats"
)

// DefaultBatchSize is used when a request does not specify one.
const DefaultBatchSize = 10

// Sentinel errors.
var (
	// ErrCompanyRequired is returned when a run request has no company ID.
	ErrCompanyRequired = errors.New("company_id required")

	// errMissingSongstatsID fails an item whose artist has no Songstats
	// identifier mapped.
	errMissingSongstatsID = errors.New("missing songstats_id")
)

// QueueStore is the queue-table surface the processor needs.
type QueueStore interface {
	ClaimBatch(ctx context.Context, companyID uuid.UUID, limit int) ([]db.QueueEntry, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkError(ctx context.Context, id uuid.UUID, message string) error
}

// ArtistStore is the artist-table surface the processor needs.
type ArtistStore interface {
	SongstatsID(ctx context.Context, artistID, companyID uuid.UUID) (string, error)
	UpdateCore(ctx context.Context, artistID, companyID uuid.UUID, core db.ArtistCore) error
	UpsertGenres(ctx context.Context, artistID uuid.UUID, genres []string) error
	UpsertLinks(ctx context.Context, artistID uuid.UUID, links []db.ArtistLink) error
	UpsertRelated(ctx context.Context, artistID uuid.UUID, related []db.RelatedArtist) error
}

// MetadataFetcher abstracts the Songstats client for testing.
type MetadataFetcher interface {
	GetArtistInfo(ctx context.Context, songstatsID string) (*songstats.ArtistPayload, error)
}

// Processor runs enrichment batches.
type Processor struct {
	queue     QueueStore
	artists   ArtistStore
	fetcher   MetadataFetcher
	rateDelay time.Duration
}

// Option configures a Processor.
type Option func(*Processor)

// WithRateDelay sets the pause between processed items.
func WithRateDelay(d time.Duration) Option {
	return func(p *Processor) {
		if d >= 0 {
			p.rateDelay = d
		}
	}
}

// NewProcessor creates a batch processor.
func NewProcessor(queue QueueStore, artists ArtistStore, fetcher MetadataFetcher, opts ...Option) *Processor {
	p := &Processor{
		queue:     queue,
		artists:   artists,
		fetcher:   fetcher,
		rateDelay: 600 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Request describes one enrichment invocation.
type Request struct {
	CompanyID uuid.UUID
	BatchSize int

	// DryRun marks claimed entries done without touching the Songstats
	// API, for exercising the claim/mark plumbing.
	DryRun bool
}

// Result summarizes one invocation. Per-item failure detail lives in the
// queue table's error columns, not here.
type Result struct {
	Locked    int
	Processed int
	Succeeded int
	Failed    int
}

// Run claims a batch for the request's company and processes the entries
// sequentially. Item failures are recorded on the entry and never abort the
// batch; only a missing company ID or a claim failure is fatal.
func (p *Processor) Run(ctx context.Context, req Request) (*Result, error) {
	if req.CompanyID == uuid.Nil {
		return nil, ErrCompanyRequired
	}

	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	entries, err := p.queue.ClaimBatch(ctx, req.CompanyID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("claiming batch: %w", err)
	}

	result := &Result{Locked: len(entries)}
	for i, entry := range entries {
		var itemErr error
		if !req.DryRun {
			itemErr = p.processEntry(ctx, entry)
		}

		if itemErr != nil {
			result.Failed++
			if err := p.queue.MarkError(ctx, entry.ID, itemErr.Error()); err != nil {
				// Bookkeeping failure must not abort the batch.
				log.Printf("marking entry %s error: %v", entry.ID, err)
			}
		} else {
			result.Succeeded++
			if err := p.queue.MarkDone(ctx, entry.ID); err != nil {
				log.Printf("marking entry %s done: %v", entry.ID, err)
			}
		}
		result.Processed++

		// Pause between items to respect the Songstats rate limit. No
		// delay after the last item, none at all in dry-run.
		if !req.DryRun && i < len(entries)-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(p.rateDelay):
			}
		}
	}

	return result, nil
}

// processEntry resolves, fetches, normalizes, and persists one entry. Any
// returned error is an item-level failure.
func (p *Processor) processEntry(ctx context.Context, entry db.QueueEntry) error {
	songstatsID, err := p.artists.SongstatsID(ctx, entry.ArtistID, entry.CompanyID)
	if errors.Is(err, db.ErrNotFound) {
		return errMissingSongstatsID
	}
	if err != nil {
		return fmt.Errorf("resolving songstats id: %w", err)
	}
	if songstatsID == "" {
		return errMissingSongstatsID
	}

	raw, err := p.fetcher.GetArtistInfo(ctx, songstatsID)
	if err != nil {
		return fmt.Errorf("fetching artist info: %w", err)
	}

	return p.persist(ctx, entry, songstats.Normalize(raw))
}

// persist writes one normalized payload across the artist tables.
func (p *Processor) persist(ctx context.Context, entry db.QueueEntry, info *songstats.ArtistInfo) error {
	core := db.ArtistCore{
		SongstatsID: info.SongstatsID,
		AvatarURL:   info.AvatarURL,
		SiteURL:     info.SiteURL,
		Bio:         info.Bio,
	}
	if err := p.artists.UpdateCore(ctx, entry.ArtistID, entry.CompanyID, core); err != nil {
		return fmt.Errorf("updating artist: %w", err)
	}

	if err := p.artists.UpsertGenres(ctx, entry.ArtistID, info.Genres); err != nil {
		return fmt.Errorf("upserting genres: %w", err)
	}

	links := make([]db.ArtistLink, len(info.Links))
	for i, link := range info.Links {
		links[i] = db.ArtistLink{
			Source:     link.Source,
			ExternalID: link.ExternalID,
			URL:        link.URL,
		}
	}
	if err := p.artists.UpsertLinks(ctx, entry.ArtistID, links); err != nil {
		return fmt.Errorf("upserting links: %w", err)
	}

	related := make([]db.RelatedArtist, len(info.Related))
	for i, rel := range info.Related {
		related[i] = db.RelatedArtist{
			SongstatsID: rel.SongstatsID,
			Name:        rel.Name,
			AvatarURL:   rel.AvatarURL,
			SiteURL:     rel.SiteURL,
		}
	}
	if err := p.artists.UpsertRelated(ctx, entry.ArtistID, related); err != nil {
		return fmt.Errorf("upserting related artists: %w", err)
	}

	return nil
}
