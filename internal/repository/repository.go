package repository

import (
	"context"
	"time"

	"meucarrim/internal/models"
)

type ListUsersParams struct {
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

type ListProductsParams struct {
	Search          *string
	CategoryID      *string
	WithoutCategory bool
	Limit           int
	Offset          int
	OrderBy         string
	Asc             *bool
}

type ListMarketsParams struct {
	Search *string
	City   *string
	State  *string
	Limit  int
	Offset int
}

type ListObservationsParams struct {
	ProductID *string
	MarketID  *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

type ListShoppingListsParams struct {
	UserID *string
	Limit  int
	Offset int
}

// CategoryCount is a category joined with how many products reference it.
type CategoryCount struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Color        *string `json:"color,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	ProductCount int64   `json:"product_count"`
}

// ProductCount is a product joined with how many price observations it has.
type ProductCount struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Image            *string `json:"image,omitempty"`
	ObservationCount int64   `json:"observation_count"`
}

// MarketCount is a market joined with how many price observations it has.
type MarketCount struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	City             *string `json:"city,omitempty"`
	ObservationCount int64   `json:"observation_count"`
}

type UserStore interface {
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) error
	SetUserRole(ctx context.Context, id string, role string) error
	DeleteUser(ctx context.Context, id string) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, item *models.Category) error
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListPopularCategories(ctx context.Context, limit int) ([]CategoryCount, error)
	UpdateCategory(ctx context.Context, id string, updates map[string]any) error
	DeleteCategory(ctx context.Context, id string) error
	CountProductsInCategory(ctx context.Context, categoryID string) (int64, error)
	DetachProductsFromCategory(ctx context.Context, categoryID string) (int64, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, item *models.Product) error
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, error)
	CountProducts(ctx context.Context, params ListProductsParams) (int64, error)
	ListPopularProducts(ctx context.Context, limit int) ([]ProductCount, error)
	UpdateProduct(ctx context.Context, id string, updates map[string]any) error
	DeleteProduct(ctx context.Context, id string) error
}

type MarketStore interface {
	CreateMarket(ctx context.Context, item *models.Market) error
	GetMarketByID(ctx context.Context, id string) (*models.Market, error)
	// FindMarketByNameCity looks up a market with the same name in the same
	// city, skipping excludeID. Used to reject duplicates at the write
	// boundary.
	FindMarketByNameCity(ctx context.Context, name string, city *string, excludeID string) (*models.Market, error)
	ListMarkets(ctx context.Context, params ListMarketsParams) ([]models.Market, error)
	CountMarkets(ctx context.Context, params ListMarketsParams) (int64, error)
	ListMarketsByCity(ctx context.Context, city string) ([]models.Market, error)
	// ListMarketsWithCoordinates returns only markets whose coordinate pair
	// is fully set; the nearby search never sees half-set pairs.
	ListMarketsWithCoordinates(ctx context.Context) ([]models.Market, error)
	ListPopularMarkets(ctx context.Context, limit int) ([]MarketCount, error)
	ListCities(ctx context.Context) ([]string, error)
	ListStates(ctx context.Context) ([]string, error)
	UpdateMarket(ctx context.Context, id string, updates map[string]any) error
	DeleteMarket(ctx context.Context, id string) error
}

type ObservationStore interface {
	InsertObservation(ctx context.Context, item *models.PriceObservation) error
	GetObservationByID(ctx context.Context, id string) (*models.PriceObservation, error)
	ListObservations(ctx context.Context, params ListObservationsParams) ([]models.PriceObservation, error)
	CountObservations(ctx context.Context, params ListObservationsParams) (int64, error)
	// ListProductObservationsSince returns every observation of a product
	// with purchase_date >= since, market preloaded, in chronological order.
	ListProductObservationsSince(ctx context.Context, productID string, since time.Time) ([]models.PriceObservation, error)
	UpdateObservation(ctx context.Context, id string, updates map[string]any) error
	DeleteObservation(ctx context.Context, id string) error
	CountObservationsByMarket(ctx context.Context, marketID string) (int64, error)
	DeleteObservationsByMarket(ctx context.Context, marketID string) (int64, error)
	DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ShoppingListStore interface {
	CreateShoppingList(ctx context.Context, item *models.ShoppingList) error
	// GetShoppingListByID loads a list with its items; when userID is
	// non-nil the list must belong to that user.
	GetShoppingListByID(ctx context.Context, id string, userID *string) (*models.ShoppingList, error)
	ListShoppingListsByUser(ctx context.Context, userID string) ([]models.ShoppingList, error)
	ListShoppingLists(ctx context.Context, params ListShoppingListsParams) ([]models.ShoppingList, error)
	CountShoppingLists(ctx context.Context, params ListShoppingListsParams) (int64, error)
	UpdateShoppingList(ctx context.Context, id string, userID string, updates map[string]any) (int64, error)
	DeleteShoppingList(ctx context.Context, id string, userID string) (int64, error)
	AddListItem(ctx context.Context, item *models.ShoppingListItem) error
	// GetListItemForUser loads an item only when its parent list belongs to
	// the given user.
	GetListItemForUser(ctx context.Context, itemID string, userID string) (*models.ShoppingListItem, error)
	UpdateListItem(ctx context.Context, itemID string, updates map[string]any) error
	DeleteListItem(ctx context.Context, itemID string) error
}

// Repository is the unified store handed to handlers and services.
type Repository interface {
	UserStore
	CategoryStore
	ProductStore
	MarketStore
	ObservationStore
	ShoppingListStore
}
