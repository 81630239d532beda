package list

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

// ErrDuplicate is returned when an insert hits the UNIQUE(user_id, anime_id)
// constraint. It is the race-safe backstop beneath the handler's pre-check.
var ErrDuplicate = errors.New("entry already exists for this user and anime")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const entryColumns = `id, user_id, anime_id, status,
	score_story, score_art, score_sound, score_characters, score_enjoyment,
	computed_overall, rewatch_count, rewatch_score, current_episode,
	date_started, date_completed, created_at, updated_at`

func scanEntry(scan func(dest ...any) error) (*models.ListEntry, error) {
	var e models.ListEntry
	var (
		story, art, sound, characters, enjoyment sql.NullInt64
		overall, rewatchScore, episode           sql.NullInt64
		started, completed                       sql.NullTime
	)
	if err := scan(
		&e.ID, &e.UserID, &e.AnimeID, &e.Status,
		&story, &art, &sound, &characters, &enjoyment,
		&overall, &e.RewatchCount, &rewatchScore, &episode,
		&started, &completed, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.ScoreStory = intPtr(story)
	e.ScoreArt = intPtr(art)
	e.ScoreSound = intPtr(sound)
	e.ScoreCharacters = intPtr(characters)
	e.ScoreEnjoyment = intPtr(enjoyment)
	e.ComputedOverall = intPtr(overall)
	e.RewatchScore = intPtr(rewatchScore)
	e.CurrentEpisode = intPtr(episode)
	e.DateStarted = timePtr(started)
	e.DateCompleted = timePtr(completed)
	return &e, nil
}

func (r *Repo) Create(ctx context.Context, e models.ListEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO list_entries (id, user_id, anime_id, status,
			score_story, score_art, score_sound, score_characters, score_enjoyment,
			computed_overall, rewatch_count, rewatch_score, current_episode,
			date_started, date_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.AnimeID, e.Status,
		nullInt(e.ScoreStory), nullInt(e.ScoreArt), nullInt(e.ScoreSound),
		nullInt(e.ScoreCharacters), nullInt(e.ScoreEnjoyment),
		nullInt(e.ComputedOverall), e.RewatchCount, nullInt(e.RewatchScore),
		nullInt(e.CurrentEpisode), nullTime(e.DateStarted), nullTime(e.DateCompleted))

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// Get returns the entry scoped to the owning user. Another user's entry is
// indistinguishable from a nonexistent one.
func (r *Repo) Get(ctx context.Context, entryID, userID string) (*models.ListEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM list_entries
		WHERE id = ? AND user_id = ?
	`, entryID, userID)

	e, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// Update writes the full row state back and refreshes updated_at, scoped to
// the owning user. Returns false when no row matched.
func (r *Repo) Update(ctx context.Context, e models.ListEntry) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE list_entries
		SET status = ?,
			score_story = ?, score_art = ?, score_sound = ?,
			score_characters = ?, score_enjoyment = ?,
			computed_overall = ?, rewatch_count = ?, rewatch_score = ?,
			current_episode = ?, date_started = ?, date_completed = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, e.Status,
		nullInt(e.ScoreStory), nullInt(e.ScoreArt), nullInt(e.ScoreSound),
		nullInt(e.ScoreCharacters), nullInt(e.ScoreEnjoyment),
		nullInt(e.ComputedOverall), e.RewatchCount, nullInt(e.RewatchScore),
		nullInt(e.CurrentEpisode), nullTime(e.DateStarted), nullTime(e.DateCompleted),
		e.ID, e.UserID)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, entryID, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM list_entries
		WHERE id = ? AND user_id = ?
	`, entryID, userID)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) ExistsPair(ctx context.Context, userID, animeID string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT 1 FROM list_entries
		WHERE user_id = ? AND anime_id = ?
	`, userID, animeID)

	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("exists pair: %w", err)
	}
	return true, nil
}

// ListByUser returns the user's full list, newest activity first. Pagination
// is deliberately not offered here.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.ListEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM list_entries
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.ListEntry, 0, 16)
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan entry row: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}
