package malimport

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TahaZMohiuddin/arcanum/internal/auth"
	"github.com/TahaZMohiuddin/arcanum/internal/events"
)

// maxUploadBytes bounds how much of an export we will read. Real MAL exports
// are well under a megabyte even for huge lists.
const maxUploadBytes = 16 << 20

type Handler struct {
	Reconciler *Reconciler
	Hub        *events.Hub
}

func NewHandler(reconciler *Reconciler, hub *events.Hub) *Handler {
	return &Handler{Reconciler: reconciler, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import/mal", h.importMAL)
}

func (h *Handler) importMAL(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}

	// extension gate comes before any parsing work
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xml") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be a .xml MAL export"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	records, err := Parse(data)
	if err != nil {
		if errors.Is(err, ErrFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrFormat.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse file"})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no anime entries found in file"})
		return
	}

	summary, err := h.Reconciler.Import(c.Request.Context(), claims.UserID, records)
	if err != nil {
		logrus.WithError(err).Error("mal import failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  claims.UserID,
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
		"total":    summary.TotalInFile,
	}).Info("mal import complete")

	if h.Hub != nil {
		ev := events.ImportEvent{
			Type:     events.TypeImportDone,
			UserID:   claims.UserID,
			Imported: summary.Imported,
			Skipped:  summary.Skipped,
			At:       time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, summary)
}
