package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentasys/clinic-api/internal/models"
	"github.com/dentasys/clinic-api/internal/store"
	"github.com/dentasys/clinic-api/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": "Invalid role"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Failed to hash password"})
		return
	}

	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: h.Now(),
	}
	if err := h.Store.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "result": "An account with this email already exists"})
			return
		}
		h.Logger.Error().Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Failed to create user"})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "result": gin.H{"token": token, "user": user}})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": "Invalid request"})
		return
	}

	user, err := h.Store.Users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || user.Password == "" || !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "result": "Incorrect email or password. Please try again."})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"token": token, "user": user}})
}

// GoogleLogin resolves a Google ID token. Known accounts get a session token;
// unknown verified emails are told to complete registration.
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": "Invalid request"})
		return
	}

	identity, err := h.Google.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "result": "Invalid or expired Google token"})
		return
	}

	user, err := h.Store.Users.GetByEmail(c.Request.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"success":           false,
				"needsRegistration": true,
				"email":             identity.Email,
				"name":              identity.Name,
			})
			return
		}
		h.storeError(c, err, "User not found")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": gin.H{"token": token, "user": user}})
}

// CompleteGoogleRegistration creates the account for a verified Google
// identity. No password is stored for these users.
func (h *Handler) CompleteGoogleRegistration(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
		Role    string `json:"role"`
		Name    string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": "Invalid request"})
		return
	}

	identity, err := h.Google.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "result": "Invalid or expired Google token"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "result": "Invalid role"})
		return
	}
	name := req.Name
	if name == "" {
		name = identity.Name
	}

	user := &models.User{
		Name:      name,
		Email:     identity.Email,
		Role:      role,
		CreatedAt: h.Now(),
	}
	if err := h.Store.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "result": "User already exists"})
			return
		}
		h.Logger.Error().Err(err).Msg("google registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Failed to create user"})
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "result": "Could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "result": gin.H{"token": token, "user": user}})
}
