package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"meucarrim/internal/auth"
	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

// ShoppingListHandler serves list CRUD scoped to the authenticated owner.
// Admins get a separate read-only view over everyone's lists.
type ShoppingListHandler struct {
	Repo repository.Repository
}

func (h *ShoppingListHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/lists")
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.POST("", h.create)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
	group.POST("/:id/items", h.addItem)
	group.PUT("/items/:item_id", h.updateItem)
	group.DELETE("/items/:item_id", h.removeItem)
	group.POST("/items/:item_id/toggle", h.toggleItem)
	group.POST("/:id/duplicate", h.duplicate)
	group.GET("/admin/all", auth.RequireAdmin(), h.adminList)
}

func (h *ShoppingListHandler) owner(c *gin.Context) *models.User {
	user := auth.CurrentUser(c)
	if user == nil {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return nil
	}
	return user
}

// @Summary Lists of the authenticated user
// @Tags lists
// @Router /api/v1/lists [get]
func (h *ShoppingListHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	user := h.owner(c)
	if user == nil {
		return
	}
	items, err := h.Repo.ListShoppingListsByUser(c.Request.Context(), user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *ShoppingListHandler) get(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	ownerID := &user.ID
	if user.IsAdmin() {
		ownerID = nil
	}
	item, err := h.Repo.GetShoppingListByID(c.Request.Context(), c.Param("id"), ownerID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "list not found", nil)
		return
	}
	Ok(c, item, nil)
}

type listRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

func (h *ShoppingListHandler) create(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	item := &models.ShoppingList{
		UserID:      user.ID,
		Name:        strings.TrimSpace(*req.Name),
		Description: req.Description,
	}
	if err := h.Repo.CreateShoppingList(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ShoppingListHandler) update(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	var req listRequest
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
	if req.IsCompleted != nil {
		updates["is_completed"] = *req.IsCompleted
	}
	affected, err := h.Repo.UpdateShoppingList(c.Request.Context(), c.Param("id"), user.ID, updates)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if affected == 0 {
		Error(c, http.StatusNotFound, "list not found", nil)
		return
	}
	updated, _ := h.Repo.GetShoppingListByID(c.Request.Context(), c.Param("id"), &user.ID)
	Ok(c, updated, nil)
}

func (h *ShoppingListHandler) delete(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	id := c.Param("id")
	affected, err := h.Repo.DeleteShoppingList(c.Request.Context(), id, user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if affected == 0 {
		Error(c, http.StatusNotFound, "list not found", nil)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

type listItemRequest struct {
	ProductID      *string `json:"product_id"`
	Quantity       *int    `json:"quantity"`
	Notes          *string `json:"notes"`
	EstimatedPrice *string `json:"estimated_price"`
	IsPurchased    *bool   `json:"is_purchased"`
}

func parseEstimatedPrice(raw string) (*decimal.Decimal, bool) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || price.Sign() < 0 {
		return nil, false
	}
	return &price, true
}

func (h *ShoppingListHandler) addItem(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	list, err := h.Repo.GetShoppingListByID(c.Request.Context(), c.Param("id"), &user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if list == nil {
		Error(c, http.StatusNotFound, "list not found", nil)
		return
	}
	var req listItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	if req.ProductID == nil || strings.TrimSpace(*req.ProductID) == "" {
		Error(c, http.StatusBadRequest, "product_id is required", nil)
		return
	}
	product, err := h.Repo.GetProductByID(c.Request.Context(), strings.TrimSpace(*req.ProductID))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if product == nil {
		Error(c, http.StatusNotFound, "product not found", nil)
		return
	}
	for _, existing := range list.Items {
		if existing.ProductID == product.ID {
			Error(c, http.StatusConflict, "product already on this list", nil)
			return
		}
	}
	item := &models.ShoppingListItem{
		ShoppingListID: list.ID,
		ProductID:      product.ID,
		Quantity:       1,
		Notes:          req.Notes,
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			Error(c, http.StatusBadRequest, "quantity must be positive", nil)
			return
		}
		item.Quantity = *req.Quantity
	}
	if req.EstimatedPrice != nil {
		price, ok := parseEstimatedPrice(*req.EstimatedPrice)
		if !ok {
			Error(c, http.StatusBadRequest, "estimated_price must be a non-negative decimal", nil)
			return
		}
		item.EstimatedPrice = price
	}
	if err := h.Repo.AddListItem(c.Request.Context(), item); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, item, nil)
}

func (h *ShoppingListHandler) updateItem(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	itemID := c.Param("item_id")
	existing, err := h.Repo.GetListItemForUser(c.Request.Context(), itemID, user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "list item not found", nil)
		return
	}
	var req listItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	updates := map[string]any{}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			Error(c, http.StatusBadRequest, "quantity must be positive", nil)
			return
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.EstimatedPrice != nil {
		price, ok := parseEstimatedPrice(*req.EstimatedPrice)
		if !ok {
			Error(c, http.StatusBadRequest, "estimated_price must be a non-negative decimal", nil)
			return
		}
		updates["estimated_price"] = *price
	}
	if req.IsPurchased != nil {
		updates["is_purchased"] = *req.IsPurchased
	}
	if err := h.Repo.UpdateListItem(c.Request.Context(), itemID, updates); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetListItemForUser(c.Request.Context(), itemID, user.ID)
	Ok(c, updated, nil)
}

func (h *ShoppingListHandler) removeItem(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	itemID := c.Param("item_id")
	existing, err := h.Repo.GetListItemForUser(c.Request.Context(), itemID, user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "list item not found", nil)
		return
	}
	if err := h.Repo.DeleteListItem(c.Request.Context(), itemID); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"deleted": itemID}, nil)
}

// toggleItem flips the purchased flag without the caller having to send the
// current state.
func (h *ShoppingListHandler) toggleItem(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	itemID := c.Param("item_id")
	existing, err := h.Repo.GetListItemForUser(c.Request.Context(), itemID, user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if existing == nil {
		Error(c, http.StatusNotFound, "list item not found", nil)
		return
	}
	if err := h.Repo.UpdateListItem(c.Request.Context(), itemID, map[string]any{
		"is_purchased": !existing.IsPurchased,
	}); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	updated, _ := h.Repo.GetListItemForUser(c.Request.Context(), itemID, user.ID)
	Ok(c, updated, nil)
}

// duplicate clones a list and its items into a fresh, not-completed list.
// Purchased flags reset so the copy reads as a new shopping trip.
func (h *ShoppingListHandler) duplicate(c *gin.Context) {
	user := h.owner(c)
	if user == nil {
		return
	}
	source, err := h.Repo.GetShoppingListByID(c.Request.Context(), c.Param("id"), &user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if source == nil {
		Error(c, http.StatusNotFound, "list not found", nil)
		return
	}
	copyName := source.Name + " (copy)"
	if body := strQueryPtr(c, "name"); body != nil {
		copyName = *body
	}
	clone := &models.ShoppingList{
		UserID:      user.ID,
		Name:        copyName,
		Description: source.Description,
	}
	if err := h.Repo.CreateShoppingList(c.Request.Context(), clone); err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	for _, item := range source.Items {
		cloneItem := &models.ShoppingListItem{
			ShoppingListID: clone.ID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			Notes:          item.Notes,
			EstimatedPrice: item.EstimatedPrice,
		}
		if err := h.Repo.AddListItem(c.Request.Context(), cloneItem); err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
	}
	created, err := h.Repo.GetShoppingListByID(c.Request.Context(), clone.ID, &user.ID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, created, nil)
}

// @Summary All shopping lists across users
// @Tags lists
// @Router /api/v1/lists/admin/all [get]
func (h *ShoppingListHandler) adminList(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	params := repository.ListShoppingListsParams{
		UserID: strQueryPtr(c, "user_id"),
		Limit:  limit,
		Offset: offset,
	}
	items, err := h.Repo.ListShoppingLists(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountShoppingLists(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}
