package db

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a queue entry.
type Status string

// Queue entry statuses.
const (
	StatusPending Status = "pending"
	StatusLocked  Status = "locked"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// QueueEntry represents one pending enrichment job for an artist.
type QueueEntry struct {
	ID           uuid.UUID
	ArtistID     uuid.UUID
	CompanyID    uuid.UUID
	Priority     string
	Retries      int
	Attempts     int
	Status       Status
	ErrorMessage *string // nullable
	ErrorPreview *string // nullable, truncated copy of ErrorMessage
	UpdatedAt    time.Time
}

// ArtistCore holds the artist fields overwritten by an enrichment run.
// All pointer fields are nullable and overwrite existing values, nulls
// included.
type ArtistCore struct {
	SongstatsID *string
	AvatarURL   *string
	SiteURL     *string
	Bio         *string
}

// ArtistLink represents an external link for an artist, keyed by
// (artist, source).
type ArtistLink struct {
	Source     string
	ExternalID *string // nullable
	URL        *string // nullable
}

// RelatedArtist represents a related-artist edge, keyed by
// (artist, related Songstats ID).
type RelatedArtist struct {
	SongstatsID string
	Name        *string // nullable
	AvatarURL   *string // nullable
	SiteURL     *string // nullable
}

// StatusCounts holds per-status queue entry counts for one company.
type StatusCounts struct {
	Pending int
	Locked  int
	Done    int
	Error   int
}
