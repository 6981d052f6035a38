package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"meucarrim/internal/config"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
	"meucarrim/internal/service"
)

type PriceHandler struct {
	Repo  repository.Repository
	Stats *service.PriceStatsService
	Cfg   config.StatsConfig
}

func (h *PriceHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/prices")
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("", h.create)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
	group.GET("/product/:product_id/average", h.average)
	group.GET("/product/:product_id/lowest", h.lowest)
	group.GET("/product/:product_id/markets", h.compareMarkets)
}

// @Summary List price observations
// @Tags prices
// @Param product_id query string false "filter by product"
// @Param market_id query string false "filter by market"
// @Param since query string false "RFC 3339 lower bound on purchase date"
// @Param until query string false "RFC 3339 upper bound on purchase date"
// @Router /api/v1/prices [get]
func (h *PriceHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	params := repository.ListObservationsParams{
		ProductID: strQueryPtr(c, "product_id"),
		MarketID:  strQueryPtr(c, "market_id"),
		Since:     timeQueryPtr(c, "since"),
		Until:     timeQueryPtr(c, "until"),
		Limit:     limit,
		Offset:    offset,
	}
	items, err := h.Repo.ListObservations(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountObservations(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *PriceHandler) get(c *gin.Context) {
	item, err := h.Repo.GetObservationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "price observation not found", nil)
		return
	}
	Ok(c, item, nil)
}

type observationRequest struct {
	ProductID    string  `json:"product_id"`
	MarketID     string  `json:"market_id"`
	Price        string  `json:"price"`
	PurchaseDate *string `json:"purchase_date"`
}

func (h *PriceHandler) create(c *gin.Context) {
	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	product, err := h.Repo.GetProductByID(c.Request.Context(), strings.TrimSpace(req.ProductID))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if product == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
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

type observationUpdateRequest struct {
	Price        *string `json:"price"`
	PurchaseDate *string `json:"purchase_date"`
}

// update corrects a mistyped price or date; product and market are fixed at
// insert time.
func (h *PriceHandler) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetObservationByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "price observation not found", nil)
		return
	}
	var req observationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	updates := map[string]any{}
	if req.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.Price))
		if err != nil || price.Sign() <= 0 {
			Error(c, http.StatusBadRequest, "price must be a positive decimal", nil)
			return
		}
		updates["price"] = price
	}
	if req.PurchaseDate != nil {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.PurchaseDate))
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid purchase_date", nil)
			return
		}
		updates["purchase_date"] = ts.UTC()
	}
	if err := h.Repo.UpdateObservation(c.Request.Context(), id, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetObservationByID(c.Request.Context(), id)
	Ok(c, updated, nil)
}

func (h *PriceHandler) delete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetObservationByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "price observation not found", nil)
		return
	}
	if err := h.Repo.DeleteObservation(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

// windowDays resolves the trailing window, falling back to the configured
// default when the query param is absent.
func (h *PriceHandler) windowDays(c *gin.Context) int {
	return intQuery(c, "window_days", h.Cfg.DefaultWindowDays)
}

func (h *PriceHandler) productOr404(c *gin.Context) *models.Product {
	product, err := h.Repo.GetProductByID(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return nil
	}
	if product == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return nil
	}
	return product
}

// @Summary Average price of a product over a trailing window
// @Tags prices
// @Param product_id path string true "product id"
// @Param window_days query int false "trailing window in days"
// @Router /api/v1/prices/product/{product_id}/average [get]
func (h *PriceHandler) average(c *gin.Context) {
	if h.Stats == nil {
		Error(c, http.StatusInternalServerError, "stats unavailable", nil)
		return
	}
	product := h.productOr404(c)
	if product == nil {
		return
	}
	window := h.windowDays(c)
	avg, err := h.Stats.AveragePrice(c.Request.Context(), product.ID, window)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			Ok(c, gin.H{"product_id": product.ID, "window_days": window, "average_price": nil}, nil)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"product_id":    product.ID,
		"window_days":   window,
		"average_price": avg.Round(2),
	}, nil)
}

// @Summary Cheapest in-window observation of a product
// @Tags prices
// @Param product_id path string true "product id"
// @Param window_days query int false "trailing window in days"
// @Router /api/v1/prices/product/{product_id}/lowest [get]
func (h *PriceHandler) lowest(c *gin.Context) {
	if h.Stats == nil {
		Error(c, http.StatusInternalServerError, "stats unavailable", nil)
		return
	}
	product := h.productOr404(c)
	if product == nil {
		return
	}
	window := h.windowDays(c)
	lowest, err := h.Stats.LowestPrice(c.Request.Context(), product.ID, window)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			Ok(c, gin.H{"product_id": product.ID, "window_days": window, "lowest": nil}, nil)
			return
		}
		if errors.Is(err, service.ErrInvalidArgument) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"product_id":  product.ID,
		"window_days": window,
		"lowest":      lowest,
	}, nil)
}

// @Summary Per-market price comparison for a product
// @Tags prices
// @Param product_id path string true "product id"
// @Param window_days query int false "trailing window in days"
// @Router /api/v1/prices/product/{product_id}/markets [get]
func (h *PriceHandler) compareMarkets(c *gin.Context) {
	if h.Stats == nil {
		Error(c, http.StatusInternalServerError, "stats unavailable", nil)
		return
	}
	product := h.productOr404(c)
	if product == nil {
		return
	}
	window := h.windowDays(c)
	summaries, err := h.Stats.CompareAcrossMarkets(c.Request.Context(), product.ID, window)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"product_id":  product.ID,
		"window_days": window,
		"markets":     summaries,
	}, nil)
}
