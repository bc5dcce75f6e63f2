package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/services"
)

type FeedbackHandler struct {
	log      *logger.Logger
	feedback services.FeedbackService
}

func NewFeedbackHandler(log *logger.Logger, feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		log:      log.With("handler", "FeedbackHandler"),
		feedback: feedback,
	}
}

// POST /api/feedback
func (h *FeedbackHandler) Record(c *gin.Context) {
	var input services.FeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	row, err := h.feedback.RecordFeedback(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, row)
}

// POST /api/feedback/process triggers an on-demand queue run.
func (h *FeedbackHandler) Process(c *gin.Context) {
	count, err := h.feedback.ProcessFeedbackQueue(c.Request.Context())
	if err != nil {
		h.log.Error("On-demand feedback processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feedback processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": count})
}

// POST /api/podcasts/:podcastID/metrics recomputes one podcast's aggregates.
func (h *FeedbackHandler) UpdateMetrics(c *gin.Context) {
	podcastID, err := uuid.Parse(c.Param("podcastID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid podcast id"})
		return
	}
	if err := h.feedback.UpdateMetrics(c.Request.Context(), podcastID); err != nil {
		h.log.Error("Metrics update failed", "podcast_id", podcastID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "metrics update failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
