package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMe returns the profile of the authenticated user.
func (h *Handler) GetMe(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	user, err := h.Store.Users.GetByID(c.Request.Context(), caller.ID)
	if err != nil {
		h.storeError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": user})
}
