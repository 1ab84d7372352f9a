package api

import (
	"net/http"

	"alcyxob/trainlog/internal/metrics"
	"alcyxob/trainlog/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the per-exercise progress views and the log export.
type ProgressHandler struct {
	progressService service.ProgressService
	exportService   service.ExportService
	instr           *metrics.Instrumentation
}

func NewProgressHandler(progressService service.ProgressService, exportService service.ExportService, instr *metrics.Instrumentation) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, exportService: exportService, instr: instr}
}

// ExerciseHistory godoc
// @Summary Progress of one exercise over the caller's recent sessions
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExerciseProgress
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /progress/exercise/{exerciseId} [get]
func (h *ProgressHandler) ExerciseHistory(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId", service.ErrExerciseNotFound)
	if !ok {
		return
	}

	result, err := h.progressService.ExerciseHistory(c.Request.Context(), currentUser(c).ID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ProgressHandler) LastBestSet(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId", service.ErrExerciseNotFound)
	if !ok {
		return
	}

	best, err := h.progressService.LastBestSet(c.Request.Context(), currentUser(c).ID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bestSet": best})
}

// Export uploads the caller's training log and answers with a download link.
// Without object storage configured the route answers 503.
func (h *ProgressHandler) Export(c *gin.Context) {
	if h.exportService == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Export is not enabled")
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.instr.CounterExports.Inc()
	c.JSON(http.StatusOK, result)
}
