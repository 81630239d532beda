package malimport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

// maxUnmatchedTitles caps the titles echoed back in the summary so a huge
// export can't inflate the response. The count field is not capped.
const maxUnmatchedTitles = 20

// Reconciler matches parsed export records against the catalog and the
// user's existing list, then bulk-creates the missing entries. Everything
// runs inside one transaction with exactly two reads and one bulk write, no
// matter how large the file is.
type Reconciler struct {
	DB *sql.DB
}

func NewReconciler(db *sql.DB) *Reconciler {
	return &Reconciler{DB: db}
}

func (r *Reconciler) Import(ctx context.Context, userID string, records []Record) (*models.ImportSummary, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	animeByMAL, err := catalogByMALID(ctx, tx, records)
	if err != nil {
		return nil, err
	}

	existing, err := userAnimeIDs(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_entries (id, user_id, anime_id, status, computed_overall,
			rewatch_count, current_episode, date_started, date_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	summary := &models.ImportSummary{
		UnmatchedTitles: []string{},
		TotalInFile:     len(records),
	}

	// pure in-memory walk; no further reads
	for _, rec := range records {
		if rec.Status == "" {
			// unrecognized status label: dropped without reporting
			continue
		}

		animeID, ok := animeByMAL[rec.MALID]
		if !ok {
			summary.UnmatchedCount++
			if len(summary.UnmatchedTitles) < maxUnmatchedTitles {
				title := rec.Title
				if title == "" {
					title = fmt.Sprintf("MAL #%d", rec.MALID)
				}
				summary.UnmatchedTitles = append(summary.UnmatchedTitles, title)
			}
			continue
		}

		if _, ok := existing[animeID]; ok {
			summary.Skipped++
			continue
		}

		// imported single scores go straight into computed_overall; they are
		// not axis scores and never pass through the aggregator
		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), userID, animeID, rec.Status,
			nullInt(rec.Score), rec.RewatchCount, nullInt(rec.WatchedEps),
			nullTime(rec.StartDate), nullTime(rec.FinishDate),
		); err != nil {
			return nil, fmt.Errorf("insert entry for mal %d: %w", rec.MALID, err)
		}
		existing[animeID] = struct{}{} // a repeated MAL ID later in the file counts as skipped
		summary.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}

// catalogByMALID is bulk read one: every catalog entry whose MAL ID appears
// in the file, in a single IN query.
func catalogByMALID(ctx context.Context, tx *sql.Tx, records []Record) (map[int64]string, error) {
	seen := make(map[int64]struct{}, len(records))
	ids := make([]any, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.MALID]; ok {
			continue
		}
		seen[rec.MALID] = struct{}{}
		ids = append(ids, rec.MALID)
	}

	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := tx.QueryContext(ctx, `
		SELECT id, mal_id FROM anime WHERE mal_id IN (`+placeholders+`)
	`, ids...)
	if err != nil {
		return nil, fmt.Errorf("query catalog by mal ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var animeID string
		var malID int64
		if err := rows.Scan(&animeID, &malID); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		out[malID] = animeID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// userAnimeIDs is bulk read two: the membership set of anime already on the
// user's list.
func userAnimeIDs(ctx context.Context, tx *sql.Tx, userID string) (map[string]struct{}, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT anime_id FROM list_entries WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query existing entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var animeID string
		if err := rows.Scan(&animeID); err != nil {
			return nil, fmt.Errorf("scan existing row: %w", err)
		}
		out[animeID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
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
