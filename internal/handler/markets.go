package handler

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meucarrim/internal/auth"
	"meucarrim/internal/config"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
	"meucarrim/internal/service"
)

type MarketHandler struct {
	Repo    repository.Repository
	Locator *service.MarketLocatorService
	Geo     config.GeoConfig
}

func (h *MarketHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/markets")
	group.GET("", h.list)
	group.GET("/popular", h.popular)
	group.GET("/cities", h.cities)
	group.GET("/states", h.states)
	group.GET("/nearby", h.nearby)
	group.GET("/city/:city", h.byCity)
	group.GET("/:id", h.get)
	group.POST("", h.create)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", auth.RequireAdmin(), h.delete)
	group.DELETE("/:id/force", auth.RequireAdmin(), h.forceDelete)
}

// @Summary List markets
// @Tags markets
// @Param search query string false "match on name or address"
// @Param city query string false "filter by city"
// @Param state query string false "filter by state"
// @Router /api/v1/markets [get]
func (h *MarketHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)
	params := repository.ListMarketsParams{
		Search: strQueryPtr(c, "search"),
		City:   strQueryPtr(c, "city"),
		State:  strQueryPtr(c, "state"),
		Limit:  limit,
		Offset: offset,
	}
	items, err := h.Repo.ListMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *MarketHandler) popular(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	rows, err := h.Repo.ListPopularMarkets(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rows, nil)
}

func (h *MarketHandler) cities(c *gin.Context) {
	cities, err := h.Repo.ListCities(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, cities, nil)
}

func (h *MarketHandler) states(c *gin.Context) {
	states, err := h.Repo.ListStates(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, states, nil)
}

type nearbyMarketResponse struct {
	Market     models.Market `json:"market"`
	DistanceKm float64       `json:"distance_km"`
}

// @Summary Find markets near a coordinate
// @Tags markets
// @Param lat query number true "origin latitude"
// @Param lon query number true "origin longitude"
// @Param radius_km query number false "search radius in km"
// @Param limit query int false "max results"
// @Router /api/v1/markets/nearby [get]
func (h *MarketHandler) nearby(c *gin.Context) {
	if h.Locator == nil {
		Error(c, http.StatusInternalServerError, "locator unavailable", nil)
		return
	}
	lat := floatQueryPtr(c, "lat")
	lon := floatQueryPtr(c, "lon")
	if lat == nil || lon == nil {
		Error(c, http.StatusBadRequest, "lat and lon are required", nil)
		return
	}
	radius := floatQuery(c, "radius_km", h.Geo.DefaultRadiusKm)
	limit := intQuery(c, "limit", h.Geo.DefaultLimit)

	nearby, err := h.Locator.NearbyMarkets(c.Request.Context(), *lat, *lon, radius, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	out := make([]nearbyMarketResponse, 0, len(nearby))
	for _, entry := range nearby {
		out = append(out, nearbyMarketResponse{
			Market:     entry.Market,
			DistanceKm: math.Round(entry.DistanceKm*10) / 10,
		})
	}
	Ok(c, out, map[string]any{
		"origin":    gin.H{"lat": *lat, "lon": *lon},
		"radius_km": radius,
		"count":     len(out),
	})
}

func (h *MarketHandler) byCity(c *gin.Context) {
	city := strings.TrimSpace(c.Param("city"))
	if city == "" {
		Error(c, http.StatusBadRequest, "city is required", nil)
		return
	}
	items, err := h.Repo.ListMarketsByCity(c.Request.Context(), city)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *MarketHandler) get(c *gin.Context) {
	item, err := h.Repo.GetMarketByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	observations, err := h.Repo.CountObservationsByMarket(c.Request.Context(), item.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"market": item, "observation_count": observations}, nil)
}

type marketRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	City      *string  `json:"city"`
	State     *string  `json:"state"`
	ZipCode   *string  `json:"zip_code"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// validCoordinatePair enforces the both-or-nothing rule on writes.
func validCoordinatePair(lat, lon *float64) (string, bool) {
	if (lat == nil) != (lon == nil) {
		return "latitude and longitude must be provided together", false
	}
	if lat == nil {
		return "", true
	}
	if *lat < -90 || *lat > 90 {
		return "latitude must be within [-90, 90]", false
	}
	if *lon < -180 || *lon > 180 {
		return "longitude must be within [-180, 180]", false
	}
	return "", true
}

func (h *MarketHandler) create(c *gin.Context) {
	var req marketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	if msg, ok := validCoordinatePair(req.Latitude, req.Longitude); !ok {
		Error(c, http.StatusBadRequest, msg, nil)
		return
	}
	name := strings.TrimSpace(*req.Name)
	clash, err := h.Repo.FindMarketByNameCity(c.Request.Context(), name, req.City, "")
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if clash != nil {
		Error(c, http.StatusConflict, "market with this name already exists in this city", nil)
		return
	}
	item := &models.Market{
		Name:      name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.Repo.CreateMarket(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *MarketHandler) update(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	var req marketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	// Coordinate updates replace the pair as a whole; partial updates are
	// checked against the merged result.
	lat, lon := existing.Latitude, existing.Longitude
	if req.Latitude != nil {
		lat = req.Latitude
	}
	if req.Longitude != nil {
		lon = req.Longitude
	}
	if msg, ok := validCoordinatePair(lat, lon); !ok {
		Error(c, http.StatusBadRequest, msg, nil)
		return
	}
	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		city := existing.City
		if req.City != nil {
			city = req.City
		}
		clash, err := h.Repo.FindMarketByNameCity(c.Request.Context(), name, city, id)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		if clash != nil {
			Error(c, http.StatusConflict, "market with this name already exists in this city", nil)
			return
		}
		updates["name"] = name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.ZipCode != nil {
		updates["zip_code"] = *req.ZipCode
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if err := h.Repo.UpdateMarket(c.Request.Context(), id, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetMarketByID(c.Request.Context(), id)
	Ok(c, updated, nil)
}

func (h *MarketHandler) delete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	inUse, err := h.Repo.CountObservationsByMarket(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if inUse > 0 {
		Error(c, http.StatusConflict, "market still has price observations; use force delete", nil)
		return
	}
	if err := h.Repo.DeleteMarket(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

// forceDelete removes the market and every observation recorded at it.
func (h *MarketHandler) forceDelete(c *gin.Context) {
	id := c.Param("id")
	existing, err := h.Repo.GetMarketByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	removed, err := h.Repo.DeleteObservationsByMarket(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if err := h.Repo.DeleteMarket(c.Request.Context(), id); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": id, "removed_observations": removed}, nil)
}
