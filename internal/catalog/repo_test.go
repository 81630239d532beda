package catalog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahaZMohiuddin/arcanum/pkg/database"
	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

func newTestRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db), db
}

func i64ptr(v int64) *int64 { return &v }
func iptr(v int) *int       { return &v }

func sampleAnime(anilistID int64, malID *int64, title string) models.Anime {
	return models.Anime{
		ID:        uuid.NewString(),
		AnilistID: anilistID,
		MALID:     malID,
		Title:     title,
	}
}

func TestUpsertBatchInsertsAndSkips(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	batch := []models.Anime{
		sampleAnime(1, i64ptr(5114), "Fullmetal Alchemist: Brotherhood"),
		sampleAnime(2, nil, "Cowboy Bebop"),
	}
	n, err := repo.UpsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// re-seeding the same anilist IDs is a no-op, even with fresh row IDs
	again := []models.Anime{
		sampleAnime(1, i64ptr(5114), "Fullmetal Alchemist: Brotherhood"),
		sampleAnime(3, nil, "Trigun"),
	}
	n, err = repo.UpsertBatch(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertBatchRoundTripsFields(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	in := sampleAnime(9, i64ptr(30), "Neon Genesis Evangelion")
	in.TitleEnglish = "Neon Genesis Evangelion"
	in.Synopsis = "Teenagers pilot giant mechs."
	in.Genres = []string{"Drama", "Mecha"}
	in.EpisodeCount = iptr(26)
	in.AverageScore = iptr(85)
	in.Season = "FALL"
	in.SeasonYear = iptr(1995)
	in.CachedTags = map[string]string{"Philosophy": "92"}

	_, err := repo.UpsertBatch(ctx, []models.Anime{in})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, in.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, []string{"Drama", "Mecha"}, got.Genres)
	require.NotNil(t, got.EpisodeCount)
	assert.Equal(t, 26, *got.EpisodeCount)
	require.NotNil(t, got.MALID)
	assert.EqualValues(t, 30, *got.MALID)
	assert.Equal(t, map[string]string{"Philosophy": "92"}, got.CachedTags)
}

func TestGetByIDMissing(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.GetByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByMALIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []models.Anime{
		sampleAnime(1, i64ptr(100), "A"),
		sampleAnime(2, i64ptr(200), "B"),
		sampleAnime(3, nil, "No MAL mapping"),
	})
	require.NoError(t, err)

	got, err := repo.GetByMALIDs(ctx, []int64{100, 200, 999})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[100].Title)
	assert.Equal(t, "B", got[200].Title)
	_, found := got[999]
	assert.False(t, found)

	empty, err := repo.GetByMALIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mk := func(anilistID int64, title, genre, season string, year int) models.Anime {
		m := sampleAnime(anilistID, nil, title)
		m.Genres = []string{genre}
		m.Season = season
		m.SeasonYear = iptr(year)
		return m
	}
	_, err := repo.UpsertBatch(ctx, []models.Anime{
		mk(1, "Cowboy Bebop", "Sci-Fi", "SPRING", 1998),
		mk(2, "Samurai Champloo", "Action", "SPRING", 2004),
		mk(3, "Space Dandy", "Sci-Fi", "WINTER", 2014),
	})
	require.NoError(t, err)

	out, err := repo.List(ctx, ListQuery{Q: "cowboy"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Cowboy Bebop", out[0].Title)

	out, err = repo.List(ctx, ListQuery{Genre: "sci-fi"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = repo.List(ctx, ListQuery{Season: "spring", SeasonYear: 2004})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Samurai Champloo", out[0].Title)

	total, err := repo.Count(ctx, ListQuery{Genre: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestListOrderAndPaging(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []models.Anime{
		sampleAnime(1, nil, "Berserk"),
		sampleAnime(2, nil, "Akira"),
		sampleAnime(3, nil, "Claymore"),
	})
	require.NoError(t, err)

	out, err := repo.List(ctx, ListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Akira", out[0].Title)
	assert.Equal(t, "Berserk", out[1].Title)

	out, err = repo.List(ctx, ListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Claymore", out[0].Title)
}
