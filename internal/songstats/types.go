package songstats

// ArtistPayload is the raw artist_info object returned by the Songstats
// API. Upstream fields beyond these are ignored.
type ArtistPayload struct {
	SongstatsArtistID string           `json:"songstats_artist_id"`
	Avatar            string           `json:"avatar"`
	SiteURL           string           `json:"site_url"`
	Name              string           `json:"name"`
	Country           string           `json:"country"`
	Bio               string           `json:"bio"`
	Genres            []string         `json:"genres"`
	Links             []PayloadLink    `json:"links"`
	RelatedArtists    []PayloadRelated `json:"related_artists"`
}

// artistResponse is the JSON envelope for GET /api/artist/{id}.
type artistResponse struct {
	ArtistInfo *ArtistPayload `json:"artist_info"`
}

// PayloadLink is one upstream link entry.
type PayloadLink struct {
	Source     string `json:"source"`
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
}

// PayloadRelated is one upstream related-artist entry.
type PayloadRelated struct {
	SongstatsArtistID string `json:"songstats_artist_id"`
	Avatar            string `json:"avatar"`
	SiteURL           string `json:"site_url"`
	Name              string `json:"name"`
}
