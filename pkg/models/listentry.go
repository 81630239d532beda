package models

import "time"

// Watch statuses for a list entry. Anything else is rejected at the API
// boundary.
const (
	StatusWatching    = "watching"
	StatusCompleted   = "completed"
	StatusDropped     = "dropped"
	StatusPlanToWatch = "plan_to_watch"
	StatusOnHold      = "on_hold"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusWatching, StatusCompleted, StatusDropped, StatusPlanToWatch, StatusOnHold:
		return true
	}
	return false
}

// ListEntry is one (user, anime) watch relationship. ComputedOverall is
// derived server-side: the rounded mean of the non-nil axis scores for
// manually scored entries, or the imported single score for MAL imports.
type ListEntry struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	AnimeID         string     `json:"anime_id"`
	Status          string     `json:"status"`
	ScoreStory      *int       `json:"score_story"`
	ScoreArt        *int       `json:"score_art"`
	ScoreSound      *int       `json:"score_sound"`
	ScoreCharacters *int       `json:"score_characters"`
	ScoreEnjoyment  *int       `json:"score_enjoyment"`
	ComputedOverall *int       `json:"computed_overall"`
	RewatchCount    int        `json:"rewatch_count"`
	RewatchScore    *int       `json:"rewatch_score"`
	CurrentEpisode  *int       `json:"current_episode"`
	DateStarted     *time.Time `json:"date_started"`
	DateCompleted   *time.Time `json:"date_completed"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ImportSummary reports the outcome of a MAL import. Unmatched titles are
// capped at 20 by the reconciler; UnmatchedCount carries the real number.
type ImportSummary struct {
	Imported        int      `json:"imported"`
	Skipped         int      `json:"skipped"`
	UnmatchedCount  int      `json:"unmatched_count"`
	UnmatchedTitles []string `json:"unmatched_titles"`
	TotalInFile     int      `json:"total_in_file"`
}
