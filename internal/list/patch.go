package list

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

// readPatch decodes a sparse update body. Keys absent from the map were not
// sent at all; keys mapped to JSON null are explicit clears. The two must not
// be conflated, so the body is kept as raw messages instead of a struct.
func readPatch(body io.Reader) (map[string]json.RawMessage, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	patch := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// applyPatch mutates only the fields present in the patch. Unknown keys are
// ignored. Fields that cannot be null (status, rewatch_count) reject explicit
// nulls; nullable fields treat null as "clear".
func applyPatch(e *models.ListEntry, patch map[string]json.RawMessage) error {
	for key, raw := range patch {
		var err error
		switch key {
		case "status":
			err = patchStatus(e, raw)
		case "score_story":
			err = patchIntPtr(&e.ScoreStory, raw, key)
		case "score_art":
			err = patchIntPtr(&e.ScoreArt, raw, key)
		case "score_sound":
			err = patchIntPtr(&e.ScoreSound, raw, key)
		case "score_characters":
			err = patchIntPtr(&e.ScoreCharacters, raw, key)
		case "score_enjoyment":
			err = patchIntPtr(&e.ScoreEnjoyment, raw, key)
		case "rewatch_count":
			err = patchRewatchCount(e, raw)
		case "rewatch_score":
			err = patchIntPtr(&e.RewatchScore, raw, key)
		case "current_episode":
			err = patchIntPtr(&e.CurrentEpisode, raw, key)
		case "date_started":
			err = patchTimePtr(&e.DateStarted, raw, key)
		case "date_completed":
			err = patchTimePtr(&e.DateCompleted, raw, key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func patchStatus(e *models.ListEntry, raw json.RawMessage) error {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("status must be a string")
	}
	if s == nil {
		return fmt.Errorf("status cannot be null")
	}
	if !models.ValidStatus(*s) {
		return fmt.Errorf("status must be one of: watching, completed, dropped, plan_to_watch, on_hold")
	}
	e.Status = *s
	return nil
}

func patchRewatchCount(e *models.ListEntry, raw json.RawMessage) error {
	var v *int
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("rewatch_count must be an integer")
	}
	if v == nil {
		return fmt.Errorf("rewatch_count cannot be null")
	}
	e.RewatchCount = *v
	return nil
}

func patchIntPtr(dst **int, raw json.RawMessage, key string) error {
	var v *int
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s must be an integer or null", key)
	}
	*dst = v
	return nil
}

func patchTimePtr(dst **time.Time, raw json.RawMessage, key string) error {
	var v *time.Time
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s must be an RFC 3339 timestamp or null", key)
	}
	*dst = v
	return nil
}

// validateEntry checks the range constraints on a full row, both for creates
// and for the post-patch state of an update.
func validateEntry(e *models.ListEntry) error {
	for _, s := range []struct {
		name  string
		value *int
	}{
		{"score_story", e.ScoreStory},
		{"score_art", e.ScoreArt},
		{"score_sound", e.ScoreSound},
		{"score_characters", e.ScoreCharacters},
		{"score_enjoyment", e.ScoreEnjoyment},
		{"rewatch_score", e.RewatchScore},
	} {
		if s.value != nil && (*s.value < 1 || *s.value > 10) {
			return fmt.Errorf("%s must be between 1 and 10", s.name)
		}
	}
	if e.RewatchCount < 0 {
		return fmt.Errorf("rewatch_count must be >= 0")
	}
	if e.CurrentEpisode != nil && *e.CurrentEpisode < 0 {
		return fmt.Errorf("current_episode must be >= 0")
	}
	return nil
}
