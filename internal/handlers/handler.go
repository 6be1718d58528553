package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dentasys/clinic-api/internal/middleware"
	"github.com/dentasys/clinic-api/internal/services"
	"github.com/dentasys/clinic-api/internal/store"
)

// Handler carries the dependencies shared by every route handler. Now is the
// request clock; handlers read it once per request so every derived date
// bucket agrees on the same instant.
type Handler struct {
	Store   *store.Store
	Google  services.GoogleVerifier
	Chatbot *services.ChatbotService
	Logger  zerolog.Logger
	Now     func() time.Time
}

func NewHandler(st *store.Store, google services.GoogleVerifier, chatbot *services.ChatbotService, logger zerolog.Logger) *Handler {
	return &Handler{
		Store:   st,
		Google:  google,
		Chatbot: chatbot,
		Logger:  logger,
		Now:     time.Now,
	}
}

// caller returns the authenticated identity or aborts with 401.
func (h *Handler) caller(c *gin.Context) (middleware.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return caller, ok
}

// storeError maps gateway errors onto the HTTP taxonomy. Unexpected errors
// are logged and surfaced as an opaque 500.
func (h *Handler) storeError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate record"})
	default:
		h.Logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	s := c.Query(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
