package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"meucarrim/internal/auth"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

type ProductHandler struct {
	Repo repository.Repository
}

func (h *ProductHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/products")
	group.GET("", h.list)
	group.GET("/popular", h.popular)
	group.GET("/without-category", h.withoutCategory)
	group.GET("/category/:category_id", h.byCategory)
	group.GET("/:id", h.get)
	group.POST("", auth.RequireAdmin(), h.create)
	group.PUT("/:id", auth.RequireAdmin(), h.update)
	group.DELETE("/:id", auth.RequireAdmin(), h.delete)
	group.POST("/:id/prices", h.recordPrice)
}

// @Summary List products
// @Tags products
// @Param search query string false "match on name or description"
// @Param category_id query string false "filter by category"
// @Router /api/v1/products [get]
func (h *ProductHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	params := repository.ListProductsParams{
		Search:     strQueryPtr(c, "search"),
		CategoryID: strQueryPtr(c, "category_id"),
		Limit:      limit,
		Offset:     offset,
		OrderBy:    "name",
		Asc:        boolPtr(true),
	}
	items, err := h.Repo.ListProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *ProductHandler) popular(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	rows, err := h.Repo.ListPopularProducts(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

func (h *ProductHandler) withoutCategory(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListProductsParams{
		WithoutCategory: true,
		Limit:           limit,
		Offset:          offset,
		OrderBy:         "name",
		Asc:             boolPtr(true),
	}
	items, err := h.Repo.ListProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *ProductHandler) byCategory(c *gin.Context) {
	categoryID := c.Param("category_id")
	category, err := h.Repo.GetCategoryByID(c.Request.Context(), categoryID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if category == nil {
		Error(c, http.StatusNotFound, "category not found", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListProductsParams{
		CategoryID: &categoryID,
		Limit:      limit,
		Offset:     offset,
		OrderBy:    "name",
		Asc:        boolPtr(true),
	}
	items, err := h.Repo.ListProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountProducts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *ProductHandler) get(c *gin.Context) {
	item, err := h.Repo.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	// Attach the most recent observations for the product page.
	productID := item.ID
	recent, err := h.Repo.ListObservations(c.Request.Context(), repository.ListObservationsParams{
		ProductID: &productID,
		Limit:     10,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"product": item, "recent_observations": recent}, nil)
}

type productRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	CategoryID  *string `json:"category_id"`
}

func (h *ProductHandler) create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		category, err := h.Repo.GetCategoryByID(c.Request.Context(), strings.TrimSpace(*req.CategoryID))
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		if category == nil {
			Error(c, http.StatusNotFound, "category not found", nil)
			return
		}
	}
	item := &models.Product{
		Name:        strings.TrimSpace(*req.Name),
		Description: req.Description,
		Image:       req.Image,
		CategoryID:  req.CategoryID,
	}
	if err := h.Repo.CreateProduct(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ProductHandler) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.CategoryID != nil {
		if strings.TrimSpace(*req.CategoryID) == "" {
			updates["category_id"] = nil
		} else {
			category, err := h.Repo.GetCategoryByID(c.Request.Context(), strings.TrimSpace(*req.CategoryID))
			if err != nil {
				Error(c, http.StatusBadGateway, err.Error(), nil)
				return
			}
			if category == nil {
				Error(c, http.StatusNotFound, "category not found", nil)
				return
			}
			updates["category_id"] = category.ID
		}
	}
	if err := h.Repo.UpdateProduct(c.Request.Context(), id, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetProductByID(c.Request.Context(), id)
	Ok(c, updated, nil)
}

func (h *ProductHandler) delete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	if err := h.Repo.DeleteProduct(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

type recordPriceRequest struct {
	MarketID     string  `json:"market_id"`
	Price        string  `json:"price"`
	PurchaseDate *string `json:"purchase_date"`
}

// recordPrice appends a price observation for the product in the URL.
func (h *ProductHandler) recordPrice(c *gin.Context) {
	productID := c.Param("id")
	product, err := h.Repo.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if product == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	var req recordPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	market, err := h.Repo.GetMarketByID(c.Request.Context(), strings.TrimSpace(req.MarketID))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if market == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.Sign() <= 0 {
		Error(c, http.StatusBadRequest, "price must be a positive decimal", nil)
		return
	}
	item := &models.PriceObservation{
		ProductID: product.ID,
		MarketID:  market.ID,
		Price:     price,
	}
	if req.PurchaseDate != nil && strings.TrimSpace(*req.PurchaseDate) != "" {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.PurchaseDate))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid purchase_date", nil)
			return
		}
		item.PurchaseDate = ts.UTC()
	}
	if err := h.Repo.InsertObservation(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}
