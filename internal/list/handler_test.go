package list

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahaZMohiuddin/arcanum/internal/auth"
	"github.com/TahaZMohiuddin/arcanum/internal/catalog"
	"github.com/TahaZMohiuddin/arcanum/pkg/database"
	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

type listFixture struct {
	db      *sql.DB
	router  *gin.Engine
	tokens  auth.TokenService
	userID  string
	token   string
	animeID string
}

func newListFixture(t *testing.T) *listFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	fx := &listFixture{
		db: db,
		tokens: auth.TokenService{
			Secret:   []byte("test-secret"),
			Issuer:   "arcanum-test",
			Duration: time.Hour,
		},
	}
	fx.userID, fx.token = fx.newUser(t)
	fx.animeID = fx.newAnime(t, 1, "Cowboy Bebop")

	router := gin.New()
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(fx.tokens, auth.NewRepo(db)))
	NewHandler(NewRepo(db), catalog.NewRepo(db), nil).RegisterRoutes(protected)
	fx.router = router

	return fx
}

func (fx *listFixture) newUser(t *testing.T) (string, string) {
	t.Helper()
	id := uuid.NewString()
	_, err := fx.db.ExecContext(context.Background(), `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, 'x')
	`, id, "user-"+id[:8], id[:8]+"@example.com")
	require.NoError(t, err)

	token, _, err := fx.tokens.Sign(&models.User{ID: id, Username: "u", Email: "e@example.com"})
	require.NoError(t, err)
	return id, token
}

func (fx *listFixture) newAnime(t *testing.T, anilistID int64, title string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := fx.db.ExecContext(context.Background(), `
		INSERT INTO anime (id, anilist_id, title) VALUES (?, ?, ?)
	`, id, anilistID, title)
	require.NoError(t, err)
	return id
}

func (fx *listFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func decodeEntry(t *testing.T, rec *httptest.ResponseRecorder) models.ListEntry {
	t.Helper()
	var e models.ListEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestCreateRequiresAuth(t *testing.T) {
	fx := newListFixture(t)
	rec := fx.do(t, http.MethodPost, "/list", "", gin.H{"anime_id": fx.animeID, "status": "watching"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateComputesOverall(t *testing.T) {
	fx := newListFixture(t)
	rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id":    fx.animeID,
		"status":      "watching",
		"score_story": 8,
		"score_art":   6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	e := decodeEntry(t, rec)
	require.NotNil(t, e.ComputedOverall)
	assert.Equal(t, 7, *e.ComputedOverall)
	assert.Equal(t, "watching", e.Status)
	assert.Equal(t, fx.userID, e.UserID)
}

func TestCreateNoScoresNilOverall(t *testing.T) {
	fx := newListFixture(t)
	rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id": fx.animeID,
		"status":   "plan_to_watch",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, decodeEntry(t, rec).ComputedOverall)
}

func TestCreateDuplicatePairConflicts(t *testing.T) {
	fx := newListFixture(t)
	first := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	require.Equal(t, http.StatusCreated, first.Code)

	// different field values do not matter; the pair is taken
	second := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id": fx.animeID, "status": "completed", "score_story": 9,
	})
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestCreateUnknownAnime(t *testing.T) {
	fx := newListFixture(t)
	rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": uuid.NewString(), "status": "watching"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScoreRangeValidation(t *testing.T) {
	fx := newListFixture(t)
	for _, bad := range []int{0, 11, -3, 150} {
		rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
			"anime_id": fx.animeID, "status": "watching", "score_story": bad,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "score %d should be rejected", bad)
	}

	for i, good := range []int{1, 10} {
		animeID := fx.newAnime(t, int64(100+i), "Another Show")
		rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
			"anime_id": animeID, "status": "watching", "score_story": good,
		})
		assert.Equal(t, http.StatusCreated, rec.Code, "score %d should be accepted", good)
	}
}

func TestCreateInvalidStatus(t *testing.T) {
	fx := newListFixture(t)
	rec := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "rewatching"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPatchRecomputesFromStoredAxes(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id": fx.animeID, "status": "watching", "score_story": 8, "score_art": 6,
	})
	require.Equal(t, http.StatusCreated, created.Code)
	entry := decodeEntry(t, created)

	// touching only sound must fold in the stored story and art values
	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, fx.token, gin.H{"score_sound": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeEntry(t, rec)
	require.NotNil(t, updated.ComputedOverall)
	assert.Equal(t, 8, *updated.ComputedOverall) // (8+6+10)/3 = 8
	require.NotNil(t, updated.ScoreStory)
	assert.Equal(t, 8, *updated.ScoreStory)
}

func TestPatchOmittedFieldPreserved(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id": fx.animeID, "status": "watching", "score_story": 8, "current_episode": 5,
	})
	entry := decodeEntry(t, created)

	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, fx.token, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeEntry(t, rec)
	assert.Equal(t, "completed", updated.Status)
	require.NotNil(t, updated.ScoreStory)
	assert.Equal(t, 8, *updated.ScoreStory)
	require.NotNil(t, updated.CurrentEpisode)
	assert.Equal(t, 5, *updated.CurrentEpisode)
}

func TestPatchExplicitNullClears(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{
		"anime_id": fx.animeID, "status": "watching", "score_story": 8, "score_art": 6,
	})
	entry := decodeEntry(t, created)

	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, fx.token, gin.H{"score_art": nil})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeEntry(t, rec)
	assert.Nil(t, updated.ScoreArt)
	require.NotNil(t, updated.ComputedOverall)
	assert.Equal(t, 8, *updated.ComputedOverall) // only story remains
}

func TestPatchNullStatusRejected(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	entry := decodeEntry(t, created)

	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, fx.token, gin.H{"status": nil})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPatchOutOfRangeScore(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	entry := decodeEntry(t, created)

	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, fx.token, gin.H{"score_sound": 11})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPatchCrossUserLooksNonexistent(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	entry := decodeEntry(t, created)

	_, otherToken := fx.newUser(t)
	rec := fx.do(t, http.MethodPatch, "/list/"+entry.ID, otherToken, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEntry(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	entry := decodeEntry(t, created)

	rec := fx.do(t, http.MethodDelete, "/list/"+entry.ID, fx.token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = fx.do(t, http.MethodDelete, "/list/"+entry.ID, fx.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteCrossUserLooksNonexistent(t *testing.T) {
	fx := newListFixture(t)
	created := fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"})
	entry := decodeEntry(t, created)

	_, otherToken := fx.newUser(t)
	rec := fx.do(t, http.MethodDelete, "/list/"+entry.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReturnsOwnEntriesOnly(t *testing.T) {
	fx := newListFixture(t)
	require.Equal(t, http.StatusCreated,
		fx.do(t, http.MethodPost, "/list", fx.token, gin.H{"anime_id": fx.animeID, "status": "watching"}).Code)

	_, otherToken := fx.newUser(t)
	rec := fx.do(t, http.MethodGet, "/list", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.ListEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Empty(t, entries)

	rec = fx.do(t, http.MethodGet, "/list", fx.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}
