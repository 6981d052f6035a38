package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"meucarrim/internal/auth"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

type UserHandler struct {
	Repo   repository.Repository
	Tokens *auth.TokenManager
}

func (h *UserHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/users")
	group.POST("/register", h.register)
	group.POST("/login", h.login)
	group.GET("/profile", h.profile)
	group.PUT("/profile", h.updateProfile)
	group.GET("", auth.RequireAdmin(), h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", auth.RequireAdmin(), h.update)
	group.DELETE("/:id", auth.RequireAdmin(), h.delete)
	group.POST("/:id/promote", auth.RequireAdmin(), h.promote)
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar"`
}

// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Router /api/v1/users/register [post]
func (h *UserHandler) register(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || len(req.Password) < 6 {
		Error(c, http.StatusBadRequest, "name, email and a password of at least 6 characters are required", nil)
		return
	}
	existing, err := h.Repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing != nil {
		Error(c, http.StatusConflict, "email already in use", nil)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		Error(c, http.StatusInternalServerError, "password hashing failed", nil)
		return
	}
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Avatar:       req.Avatar,
	}
	if err := h.Repo.CreateUser(c.Request.Context(), user); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, user, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Log in and receive a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Router /api/v1/users/login [post]
func (h *UserHandler) login(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	user, err := h.Repo.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		Error(c, http.StatusInternalServerError, "token issue failed", nil)
		return
	}
	Ok(c, gin.H{"user": user, "token": token}, nil)
}

func (h *UserHandler) profile(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	Ok(c, user, nil)
}

type updateProfileRequest struct {
	Name        *string        `json:"name"`
	Email       *string        `json:"email"`
	Avatar      *string        `json:"avatar"`
	Preferences map[string]any `json:"preferences"`
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	h.applyUserUpdate(c, user.ID)
}

func (h *UserHandler) applyUserUpdate(c *gin.Context, userID string) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) != "" {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, err := h.Repo.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		if existing != nil && existing.ID != userID {
			Error(c, http.StatusConflict, "email already in use", nil)
			return
		}
		updates["email"] = email
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Preferences != nil {
		raw, err := json.Marshal(req.Preferences)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid preferences", nil)
			return
		}
		updates["preferences"] = datatypes.JSON(raw)
	}
	if err := h.Repo.UpdateUser(c.Request.Context(), userID, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, err := h.Repo.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, updated, nil)
}

func (h *UserHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListUsers(c.Request.Context(), repository.ListUsersParams{
		Limit:   limit,
		Offset:  offset,
		OrderBy: "created_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountUsers(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *UserHandler) get(c *gin.Context) {
	caller := auth.CurrentUser(c)
	if caller == nil {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	id := c.Param("id")
	// Regular users may only read themselves.
	if !caller.IsAdmin() && caller.ID != id {
		Error(c, http.StatusForbidden, "admin only", nil)
		return
	}
	user, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if user == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	Ok(c, user, nil)
}

func (h *UserHandler) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	h.applyUserUpdate(c, id)
}

func (h *UserHandler) delete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err := h.Repo.DeleteUser(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

func (h *UserHandler) promote(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetUserByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err := h.Repo.SetUserRole(c.Request.Context(), id, models.RoleAdmin); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetUserByID(c.Request.Context(), id)
	Ok(c, updated, nil)
}
