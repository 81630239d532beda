package list

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TahaZMohiuddin/arcanum/internal/auth"
	"github.com/TahaZMohiuddin/arcanum/internal/catalog"
	"github.com/TahaZMohiuddin/arcanum/internal/events"
	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

type Handler struct {
	Repo    *Repo
	Catalog *catalog.Repo
	Hub     *events.Hub
}

func NewHandler(repo *Repo, catalogRepo *catalog.Repo, hub *events.Hub) *Handler {
	return &Handler{Repo: repo, Catalog: catalogRepo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/list", h.list)
	rg.POST("/list", h.create)
	rg.PATCH("/list/:id", h.update)
	rg.DELETE("/list/:id", h.remove)
}

type createReq struct {
	AnimeID         string     `json:"anime_id"`
	Status          string     `json:"status"`
	ScoreStory      *int       `json:"score_story"`
	ScoreArt        *int       `json:"score_art"`
	ScoreSound      *int       `json:"score_sound"`
	ScoreCharacters *int       `json:"score_characters"`
	ScoreEnjoyment  *int       `json:"score_enjoyment"`
	RewatchCount    *int       `json:"rewatch_count"`
	RewatchScore    *int       `json:"rewatch_score"`
	CurrentEpisode  *int       `json:"current_episode"`
	DateStarted     *time.Time `json:"date_started"`
	DateCompleted   *time.Time `json:"date_completed"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}

	animeID := strings.TrimSpace(req.AnimeID)
	if animeID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "anime_id required"})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "status must be one of: watching, completed, dropped, plan_to_watch, on_hold",
		})
		return
	}

	e := models.ListEntry{
		ID:              uuid.NewString(),
		UserID:          claims.UserID,
		AnimeID:         animeID,
		Status:          req.Status,
		ScoreStory:      req.ScoreStory,
		ScoreArt:        req.ScoreArt,
		ScoreSound:      req.ScoreSound,
		ScoreCharacters: req.ScoreCharacters,
		ScoreEnjoyment:  req.ScoreEnjoyment,
		RewatchScore:    req.RewatchScore,
		CurrentEpisode:  req.CurrentEpisode,
		DateStarted:     req.DateStarted,
		DateCompleted:   req.DateCompleted,
	}
	if req.RewatchCount != nil {
		e.RewatchCount = *req.RewatchCount
	}

	if err := validateEntry(&e); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	anime, err := h.Catalog.GetByID(c.Request.Context(), animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if anime == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		return
	}

	exists, err := h.Repo.ExistsPair(c.Request.Context(), claims.UserID, animeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime already in your list"})
		return
	}

	recomputeOverall(&e)

	if err := h.Repo.Create(c.Request.Context(), e); err != nil {
		// unique constraint catches the pre-check race
		if errors.Is(err, ErrDuplicate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "anime already in your list"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), e.ID, claims.UserID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast(events.TypeEntryCreated, saved)
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entryID := strings.TrimSpace(c.Param("id"))
	if entryID == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	patch, err := readPatch(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid json"})
		return
	}

	e, err := h.Repo.Get(c.Request.Context(), entryID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	if err := applyPatch(e, patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := validateEntry(e); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// derived score always follows the post-patch row state
	recomputeOverall(e)

	ok, err := h.Repo.Update(c.Request.Context(), *e)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), entryID, claims.UserID)
	if err != nil || saved == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.broadcast(events.TypeEntryUpdated, saved)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	entryID := strings.TrimSpace(c.Param("id"))
	ok, err := h.Repo.Delete(c.Request.Context(), entryID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}

	if h.Hub != nil {
		ev := events.ListEvent{
			Type:    events.TypeEntryDeleted,
			UserID:  claims.UserID,
			EntryID: entryID,
			At:      time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) broadcast(eventType string, e *models.ListEntry) {
	if h.Hub == nil {
		return
	}
	ev := events.ListEvent{
		Type:    eventType,
		UserID:  e.UserID,
		EntryID: e.ID,
		AnimeID: e.AnimeID,
		Status:  e.Status,
		At:      time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}
