package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArtistRepository handles artist metadata database operations.
type ArtistRepository struct {
	pool *pgxpool.Pool
}

// SongstatsID returns the artist's Songstats identifier, or ErrNotFound if
// the artist does not exist for the company. A NULL identifier is returned
// as an empty string.
func (r *ArtistRepository) SongstatsID(ctx context.Context, artistID, companyID uuid.UUID) (string, error) {
	query := `
		SELECT COALESCE(songstats_id, '')
		FROM artists
		WHERE id = $1 AND company_id = $2
	`
	var songstatsID string
	err := r.pool.QueryRow(ctx, query, artistID, companyID).Scan(&songstatsID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying songstats id: %w", err)
	}
	return songstatsID, nil
}

// UpdateCore overwrites the artist's enrichment fields. Nil pointers clear
// the corresponding columns. Scoped by artist and company so a stale queue
// entry can never write across tenants.
func (r *ArtistRepository) UpdateCore(ctx context.Context, artistID, companyID uuid.UUID, core ArtistCore) error {
	query := `
		UPDATE artists
		SET songstats_id = $3, avatar_url = $4, site_url = $5, bio = $6, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`
	result, err := r.pool.Exec(ctx, query,
		artistID,
		companyID,
		core.SongstatsID,
		core.AvatarURL,
		core.SiteURL,
		core.Bio,
	)
	if err != nil {
		return fmt.Errorf("updating artist: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertGenres inserts or refreshes genre rows for an artist. A conflict on
// (artist_id, genre) only bumps the timestamp, so repeating a genre is a
// no-op.
func (r *ArtistRepository) UpsertGenres(ctx context.Context, artistID uuid.UUID, genres []string) error {
	if len(genres) == 0 {
		return nil
	}

	query := `
		INSERT INTO artist_genres (artist_id, genre, updated_at)
		SELECT $1, unnest($2::text[]), $3
		ON CONFLICT (artist_id, genre) DO UPDATE SET
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, artistID, genres, time.Now())
	if err != nil {
		return fmt.Errorf("upserting genres: %w", err)
	}
	return nil
}

// UpsertLinks inserts or refreshes external link rows for an artist, keyed
// by (artist_id, source). A source appearing twice in one call collapses to
// the last value.
func (r *ArtistRepository) UpsertLinks(ctx context.Context, artistID uuid.UUID, links []ArtistLink) error {
	if len(links) == 0 {
		return nil
	}

	query := `
		INSERT INTO artist_links (artist_id, source, external_id, url, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (artist_id, source) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at
	`
	// Row-at-a-time rather than a batch unnest: duplicate sources within
	// one call must resolve last-write-wins, which a single multi-row
	// INSERT ... ON CONFLICT rejects ("affect row a second time").
	for _, link := range links {
		if _, err := r.pool.Exec(ctx, query, artistID, link.Source, link.ExternalID, link.URL); err != nil {
			return fmt.Errorf("upserting link %q: %w", link.Source, err)
		}
	}
	return nil
}

// UpsertRelated inserts or refreshes related-artist rows, keyed by
// (artist_id, related songstats id).
func (r *ArtistRepository) UpsertRelated(ctx context.Context, artistID uuid.UUID, related []RelatedArtist) error {
	if len(related) == 0 {
		return nil
	}

	query := `
		INSERT INTO artist_related (artist_id, related_songstats_id, name, avatar_url, site_url, updated_at)
		SELECT $1, u.songstats_id, u.name, u.avatar_url, u.site_url, $6
		FROM unnest($2::text[], $3::text[], $4::text[], $5::text[])
			AS u(songstats_id, name, avatar_url, site_url)
		ON CONFLICT (artist_id, related_songstats_id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = EXCLUDED.avatar_url,
			site_url = EXCLUDED.site_url,
			updated_at = EXCLUDED.updated_at
	`

	ids := make([]string, len(related))
	names := make([]*string, len(related))
	avatars := make([]*string, len(related))
	sites := make([]*string, len(related))

	for i, rel := range related {
		ids[i] = rel.SongstatsID
		names[i] = rel.Name
		avatars[i] = rel.AvatarURL
		sites[i] = rel.SiteURL
	}

	_, err := r.pool.Exec(ctx, query, artistID, ids, names, avatars, sites, time.Now())
	if err != nil {
		return fmt.Errorf("upserting related artists: %w", err)
	}
	return nil
}
