package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/services"
)

type MatchHandler struct {
	log      *logger.Logger
	matching services.TieredMatchingService
}

func NewMatchHandler(log *logger.Logger, matching services.TieredMatchingService) *MatchHandler {
	return &MatchHandler{
		log:      log.With("handler", "MatchHandler"),
		matching: matching,
	}
}

// GET /api/matches/:userID
func (h *MatchHandler) FindMatches(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	results, err := h.matching.FindMatches(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMatchData) {
			h.log.Error("Match processing produced invalid data", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid match data"})
			return
		}
		h.log.Error("Matching failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}
