package models

// Anime is a catalog entry. Rows are written by the seeder (keyed on the
// AniList ID); the HTTP API only ever reads them. The MAL ID is the secondary
// key used to match MyAnimeList export records during import.
type Anime struct {
	ID           string            `json:"id"`
	AnilistID    int64             `json:"anilist_id"`
	MALID        *int64            `json:"mal_id,omitempty"`
	Title        string            `json:"title"`
	TitleEnglish string            `json:"title_english,omitempty"`
	Synopsis     string            `json:"synopsis,omitempty"`
	CoverURL     string            `json:"cover_url,omitempty"`
	Genres       []string          `json:"genres"`
	EpisodeCount *int              `json:"episode_count,omitempty"`
	AverageScore *int              `json:"average_score,omitempty"`
	Season       string            `json:"season,omitempty"`
	SeasonYear   *int              `json:"season_year,omitempty"`
	CachedTags   map[string]string `json:"cached_tags,omitempty"`
}
