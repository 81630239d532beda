package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q          string // keyword search in titles
	Genre      string
	Season     string
	SeasonYear int
	Limit      int
	Offset     int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const animeColumns = `id, anilist_id, mal_id, title, title_english, synopsis, cover_url,
	genres, episode_count, average_score, season, season_year, cached_tags`

type animeRow struct {
	malID        sql.NullInt64
	titleEnglish sql.NullString
	synopsis     sql.NullString
	coverURL     sql.NullString
	genresJSON   string
	episodeCount sql.NullInt64
	averageScore sql.NullInt64
	season       sql.NullString
	seasonYear   sql.NullInt64
	tagsJSON     string
}

func (raw *animeRow) fill(m *models.Anime) {
	if raw.malID.Valid {
		v := raw.malID.Int64
		m.MALID = &v
	}
	m.TitleEnglish = raw.titleEnglish.String
	m.Synopsis = raw.synopsis.String
	m.CoverURL = raw.coverURL.String
	if raw.episodeCount.Valid {
		v := int(raw.episodeCount.Int64)
		m.EpisodeCount = &v
	}
	if raw.averageScore.Valid {
		v := int(raw.averageScore.Int64)
		m.AverageScore = &v
	}
	m.Season = raw.season.String
	if raw.seasonYear.Valid {
		v := int(raw.seasonYear.Int64)
		m.SeasonYear = &v
	}
	_ = json.Unmarshal([]byte(raw.genresJSON), &m.Genres)
	_ = json.Unmarshal([]byte(raw.tagsJSON), &m.CachedTags)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Anime, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+animeColumns+`
		FROM anime
		WHERE id = ?
	`, id)

	var m models.Anime
	var raw animeRow
	if err := row.Scan(
		&m.ID, &m.AnilistID, &raw.malID, &m.Title, &raw.titleEnglish, &raw.synopsis,
		&raw.coverURL, &raw.genresJSON, &raw.episodeCount, &raw.averageScore,
		&raw.season, &raw.seasonYear, &raw.tagsJSON,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	raw.fill(&m)
	return &m, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var total int
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.Anime, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.Anime, 0, q.Limit)
	for rows.Next() {
		var m models.Anime
		var raw animeRow
		if err := rows.Scan(
			&m.ID, &m.AnilistID, &raw.malID, &m.Title, &raw.titleEnglish, &raw.synopsis,
			&raw.coverURL, &raw.genresJSON, &raw.episodeCount, &raw.averageScore,
			&raw.season, &raw.seasonYear, &raw.tagsJSON,
		); err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		raw.fill(&m)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByMALIDs resolves MAL IDs to catalog entries in a single query. IDs with
// no catalog match are simply absent from the result map.
func (r *Repo) GetByMALIDs(ctx context.Context, malIDs []int64) (map[int64]models.Anime, error) {
	out := make(map[int64]models.Anime, len(malIDs))
	if len(malIDs) == 0 {
		return out, nil
	}

	placeholders := strings.Repeat("?,", len(malIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(malIDs))
	for i, id := range malIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+animeColumns+`
		FROM anime
		WHERE mal_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query by mal ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Anime
		var raw animeRow
		if err := rows.Scan(
			&m.ID, &m.AnilistID, &raw.malID, &m.Title, &raw.titleEnglish, &raw.synopsis,
			&raw.coverURL, &raw.genresJSON, &raw.episodeCount, &raw.averageScore,
			&raw.season, &raw.seasonYear, &raw.tagsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan by mal id: %w", err)
		}
		raw.fill(&m)
		if m.MALID != nil {
			out[*m.MALID] = m
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UpsertBatch inserts seeder results inside one transaction, keyed on
// anilist_id. Already-present entries are left untouched. Returns how many
// rows were actually inserted.
func (r *Repo) UpsertBatch(ctx context.Context, entries []models.Anime) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO anime (id, anilist_id, mal_id, title, title_english, synopsis,
			cover_url, genres, episode_count, average_score, season, season_year, cached_tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(anilist_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, m := range entries {
		genres, err := json.Marshal(m.Genres)
		if err != nil {
			return 0, fmt.Errorf("marshal genres for %d: %w", m.AnilistID, err)
		}
		tags := m.CachedTags
		if tags == nil {
			tags = map[string]string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return 0, fmt.Errorf("marshal tags for %d: %w", m.AnilistID, err)
		}

		res, err := stmt.ExecContext(ctx,
			m.ID, m.AnilistID, nullInt64(m.MALID), m.Title,
			nullString(m.TitleEnglish), nullString(m.Synopsis), nullString(m.CoverURL),
			string(genres), nullInt(m.EpisodeCount), nullInt(m.AverageScore),
			nullString(m.Season), nullInt(m.SeasonYear), string(tagsJSON),
		)
		if err != nil {
			return 0, fmt.Errorf("upsert anime %d: %w", m.AnilistID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return inserted, nil
}

func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `
		SELECT ` + animeColumns + `
		FROM anime
	`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM anime`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(title_english) LIKE ?)")
		kw := "%" + strings.ToLower(strings.TrimSpace(q.Q)) + "%"
		args = append(args, kw, kw)
	}

	// genre filter against JSON string
	if g := strings.TrimSpace(q.Genre); g != "" {
		where = append(where, "LOWER(genres) LIKE ?")
		args = append(args, "%"+strings.ToLower(g)+"%")
	}

	if s := strings.TrimSpace(q.Season); s != "" {
		where = append(where, "LOWER(season) = ?")
		args = append(args, strings.ToLower(s))
	}

	if q.SeasonYear > 0 {
		where = append(where, "season_year = ?")
		args = append(args, q.SeasonYear)
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY title ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
