package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meucarrim/internal/auth"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

type CategoryHandler struct {
	Repo repository.Repository
}

func (h *CategoryHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/categories")
	group.GET("", h.list)
	group.GET("/popular", h.popular)
	group.GET("/:id", h.get)
	group.POST("", auth.RequireAdmin(), h.create)
	group.PUT("/:id", auth.RequireAdmin(), h.update)
	group.DELETE("/:id", auth.RequireAdmin(), h.delete)
	group.DELETE("/:id/force", auth.RequireAdmin(), h.forceDelete)
}

func (h *CategoryHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListCategories(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *CategoryHandler) popular(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 10)
	rows, err := h.Repo.ListPopularCategories(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

func (h *CategoryHandler) get(c *gin.Context) {
	item, err := h.Repo.GetCategoryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "category not found", nil)
		return
	}
	Ok(c, item, nil)
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

func (h *CategoryHandler) create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	name := strings.TrimSpace(*req.Name)
	existing, err := h.Repo.GetCategoryByName(c.Request.Context(), name)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing != nil {
		Error(c, http.StatusConflict, "category with this name already exists", nil)
		return
	}
	item := &models.Category{
		Name:        name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	if err := h.Repo.CreateCategory(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *CategoryHandler) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "category not found", nil)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, existing.Name) {
			clash, err := h.Repo.GetCategoryByName(c.Request.Context(), name)
			if err != nil {
				Error(c, http.StatusBadGateway, err.Error(), nil)
				return
			}
			if clash != nil && clash.ID != id {
				Error(c, http.StatusConflict, "category with this name already exists", nil)
				return
			}
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if err := h.Repo.UpdateCategory(c.Request.Context(), id, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetCategoryByID(c.Request.Context(), id)
	Ok(c, updated, nil)
}

func (h *CategoryHandler) delete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "category not found", nil)
		return
	}
	inUse, err := h.Repo.CountProductsInCategory(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if inUse > 0 {
		Error(c, http.StatusConflict, "category still has products; use force delete", nil)
		return
	}
	if err := h.Repo.DeleteCategory(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

// forceDelete detaches every product first, then removes the category.
func (h *CategoryHandler) forceDelete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "category not found", nil)
		return
	}
	detached, err := h.Repo.DetachProductsFromCategory(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if err := h.Repo.DeleteCategory(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id, "detached_products": detached}, nil)
}
