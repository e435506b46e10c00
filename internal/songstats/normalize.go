package songstats

import "strings"

// socialSources is the whitelist of link sources surfaced as socials.
// Upstream still reports "twitter", which maps to the "x" key.
var socialSources = map[string]string{
	"instagram":  "instagram",
	"tiktok":     "tiktok",
	"youtube":    "youtube",
	"facebook":   "facebook",
	"twitter":    "x",
	"x":          "x",
	"soundcloud": "soundcloud",
}

// ArtistInfo is the canonical normalized shape consumed by the upserter.
type ArtistInfo struct {
	SongstatsID *string
	Name        *string
	Country     *string
	AvatarURL   *string
	SiteURL     *string
	Bio         *string

	// Genres is deduplicated with empty entries dropped.
	Genres []string

	// Links preserves upstream order with sources lower-cased. The raw
	// source is kept even for aliased socials (a twitter link stays
	// "twitter" here).
	Links []Link

	// Socials maps whitelist keys (instagram, tiktok, youtube, facebook,
	// x, soundcloud) to URLs, populated only when upstream provides one.
	Socials map[string]string

	// Related is deduplicated by Songstats ID, entries without one dropped.
	Related []RelatedArtist
}

// Link is one normalized external link.
type Link struct {
	Source     string
	ExternalID *string
	URL        *string
}

// RelatedArtist is a related-artist stub; upstream fields beyond these four
// are discarded.
type RelatedArtist struct {
	SongstatsID string
	Name        *string
	AvatarURL   *string
	SiteURL     *string
}

// Normalize converts a raw API payload into the canonical shape.
func Normalize(raw *ArtistPayload) *ArtistInfo {
	info := &ArtistInfo{
		SongstatsID: optional(raw.SongstatsArtistID),
		Name:        optional(raw.Name),
		Country:     optional(raw.Country),
		AvatarURL:   optional(raw.Avatar),
		SiteURL:     optional(raw.SiteURL),
		Bio:         optional(raw.Bio),
		Socials:     make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, genre := range raw.Genres {
		if genre == "" || seen[genre] {
			continue
		}
		seen[genre] = true
		info.Genres = append(info.Genres, genre)
	}

	for _, link := range raw.Links {
		source := strings.ToLower(link.Source)
		if source == "" {
			continue
		}
		info.Links = append(info.Links, Link{
			Source:     source,
			ExternalID: optional(link.ExternalID),
			URL:        optional(link.URL),
		})
		if key, ok := socialSources[source]; ok && link.URL != "" {
			info.Socials[key] = link.URL
		}
	}

	seenRelated := make(map[string]bool)
	for _, rel := range raw.RelatedArtists {
		if rel.SongstatsArtistID == "" || seenRelated[rel.SongstatsArtistID] {
			continue
		}
		seenRelated[rel.SongstatsArtistID] = true
		info.Related = append(info.Related, RelatedArtist{
			SongstatsID: rel.SongstatsArtistID,
			Name:        optional(rel.Name),
			AvatarURL:   optional(rel.Avatar),
			SiteURL:     optional(rel.SiteURL),
		})
	}

	return info
}

// optional maps an empty upstream string to a nil pointer.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
