package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/services"
)

type PreferencesHandler struct {
	log   *logger.Logger
	prefs services.PreferencesService
}

func NewPreferencesHandler(log *logger.Logger, prefs services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		log:   log.With("handler", "PreferencesHandler"),
		prefs: prefs,
	}
}

// GET /api/preferences/:userID
func (h *PreferencesHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	prefs, err := h.prefs.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to load preferences", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preferences"})
		return
	}
	if prefs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preferences not found"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PUT /api/preferences
func (h *PreferencesHandler) Upsert(c *gin.Context) {
	var input services.PreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	prefs, err := h.prefs.Upsert(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
