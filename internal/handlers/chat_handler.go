package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleChat proxies a prompt to the chatbot service.
func (h *Handler) HandleChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message cannot be empty"})
		return
	}

	reply, err := h.Chatbot.Generate(c.Request.Context(), req.Message)
	if err != nil {
		h.Logger.Error().Err(err).Msg("chatbot request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service returned an error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": reply})
}
