package gormrepository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- users ------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", email).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListUsers(ctx context.Context, params repository.ListUsersParams) ([]models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.User{})
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.User
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) SetUserRole(ctx context.Context, id string, role string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": time.Now().UTC()}).
		Error
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

// --- categories -------------------------------------------------------------

func (s *Store) CreateCategory(ctx context.Context, item *models.Category) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Category
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.Category
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Category
	if err := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListPopularCategories(ctx context.Context, limit int) ([]repository.CategoryCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 10)
	var rows []repository.CategoryCount
	err := s.db.WithContext(ctx).
		Table("categories AS c").
		Select(`
			c.id AS id,
			c.name AS name,
			c.color AS color,
			c.icon AS icon,
			COUNT(p.id) AS product_count
		`).
		Joins("LEFT JOIN products AS p ON p.category_id = c.id").
		Group("c.id, c.name, c.color, c.icon").
		Order("product_count desc, name asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

func (s *Store) CountProductsInCategory(ctx context.Context, categoryID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DetachProductsFromCategory(ctx context.Context, categoryID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Updates(map[string]any{"category_id": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// --- products ---------------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, item *models.Product) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Product
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func productsQuery(query *gorm.DB, params repository.ListProductsParams) *gorm.DB {
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		pattern := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if params.CategoryID != nil && strings.TrimSpace(*params.CategoryID) != "" {
		query = query.Where("category_id = ?", strings.TrimSpace(*params.CategoryID))
	}
	if params.WithoutCategory {
		query = query.Where("category_id IS NULL")
	}
	return query
}

func (s *Store) ListProducts(ctx context.Context, params repository.ListProductsParams) ([]models.Product, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := productsQuery(s.db.WithContext(ctx).Model(&models.Product{}).Preload("Category"), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "name")
	limit := normalizeLimit(params.Limit, 20)
	offset := normalizeOffset(params.Offset)
	var items []models.Product
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountProducts(ctx context.Context, params repository.ListProductsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := productsQuery(s.db.WithContext(ctx).Model(&models.Product{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListPopularProducts(ctx context.Context, limit int) ([]repository.ProductCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 10)
	var rows []repository.ProductCount
	err := s.db.WithContext(ctx).
		Table("products AS p").
		Select(`
			p.id AS id,
			p.name AS name,
			p.image AS image,
			COUNT(o.id) AS observation_count
		`).
		Joins("LEFT JOIN price_observations AS o ON o.product_id = p.id").
		Group("p.id, p.name, p.image").
		Order("observation_count desc, name asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// --- markets ----------------------------------------------------------------

func (s *Store) CreateMarket(ctx context.Context, item *models.Market) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Market
	err := s.db.WithContext(ctx).Model(&models.Market{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) FindMarketByNameCity(ctx context.Context, name string, city *string, excludeID string) (*models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Market{}).Where("LOWER(name) = LOWER(?)", name)
	if city != nil && strings.TrimSpace(*city) != "" {
		query = query.Where("LOWER(city) = LOWER(?)", strings.TrimSpace(*city))
	} else {
		query = query.Where("city IS NULL")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var item models.Market
	err := query.First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func marketsQuery(query *gorm.DB, params repository.ListMarketsParams) *gorm.DB {
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		pattern := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ? OR city ILIKE ?", pattern, pattern, pattern)
	}
	if params.City != nil && strings.TrimSpace(*params.City) != "" {
		query = query.Where("city ILIKE ?", "%"+strings.TrimSpace(*params.City)+"%")
	}
	if params.State != nil && strings.TrimSpace(*params.State) != "" {
		query = query.Where("state ILIKE ?", "%"+strings.TrimSpace(*params.State)+"%")
	}
	return query
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := marketsQuery(s.db.WithContext(ctx).Model(&models.Market{}), params)
	limit := normalizeLimit(params.Limit, 20)
	offset := normalizeOffset(params.Offset)
	var items []models.Market
	if err := query.Order("name asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := marketsQuery(s.db.WithContext(ctx).Model(&models.Market{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListMarketsByCity(ctx context.Context, city string) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil
	}
	var items []models.Market
	if err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("city ILIKE ?", "%"+city+"%").
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMarketsWithCoordinates(ctx context.Context) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Market
	if err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("latitude IS NOT NULL").
		Where("longitude IS NOT NULL").
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListPopularMarkets(ctx context.Context, limit int) ([]repository.MarketCount, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 10)
	var rows []repository.MarketCount
	err := s.db.WithContext(ctx).
		Table("markets AS m").
		Select(`
			m.id AS id,
			m.name AS name,
			m.city AS city,
			COUNT(o.id) AS observation_count
		`).
		Joins("LEFT JOIN price_observations AS o ON o.market_id = m.id").
		Group("m.id, m.name, m.city").
		Order("observation_count desc, name asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListCities(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var cities []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Distinct("city").
		Where("city IS NOT NULL").
		Order("city asc").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

func (s *Store) ListStates(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var states []string
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Distinct("state").
		Where("state IS NOT NULL").
		Order("state asc").
		Pluck("state", &states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

func (s *Store) UpdateMarket(ctx context.Context, id string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) DeleteMarket(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Market{}).Error
}

// --- price observations -----------------------------------------------------

func (s *Store) InsertObservation(ctx context.Context, item *models.PriceObservation) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.PurchaseDate.IsZero() {
		item.PurchaseDate = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetObservationByID(ctx context.Context, id string) (*models.PriceObservation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.PriceObservation
	err := s.db.WithContext(ctx).
		Model(&models.PriceObservation{}).
		Preload("Product").
		Preload("Market").
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func observationsQuery(query *gorm.DB, params repository.ListObservationsParams) *gorm.DB {
	if params.ProductID != nil && strings.TrimSpace(*params.ProductID) != "" {
		query = query.Where("product_id = ?", strings.TrimSpace(*params.ProductID))
	}
	if params.MarketID != nil && strings.TrimSpace(*params.MarketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(*params.MarketID))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("purchase_date >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("purchase_date <= ?", *params.Until)
	}
	return query
}

func (s *Store) ListObservations(ctx context.Context, params repository.ListObservationsParams) ([]models.PriceObservation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := observationsQuery(
		s.db.WithContext(ctx).Model(&models.PriceObservation{}).Preload("Product").Preload("Market"),
		params,
	)
	limit := normalizeLimit(params.Limit, 20)
	offset := normalizeOffset(params.Offset)
	var items []models.PriceObservation
	if err := query.Order("purchase_date desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountObservations(ctx context.Context, params repository.ListObservationsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	query := observationsQuery(s.db.WithContext(ctx).Model(&models.PriceObservation{}), params)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) ListProductObservationsSince(ctx context.Context, productID string, since time.Time) ([]models.PriceObservation, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, nil
	}
	var items []models.PriceObservation
	if err := s.db.WithContext(ctx).
		Model(&models.PriceObservation{}).
		Preload("Market").
		Where("product_id = ?", productID).
		Where("purchase_date >= ?", since).
		Order("purchase_date asc, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateObservation(ctx context.Context, id string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.PriceObservation{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *Store) DeleteObservation(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PriceObservation{}).Error
}

func (s *Store) CountObservationsByMarket(ctx context.Context, marketID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.PriceObservation{}).
		Where("market_id = ?", marketID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) DeleteObservationsByMarket(ctx context.Context, marketID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Delete(&models.PriceObservation{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("purchase_date < ?", cutoff).
		Delete(&models.PriceObservation{})
	return res.RowsAffected, res.Error
}

// --- shopping lists ---------------------------------------------------------

func (s *Store) CreateShoppingList(ctx context.Context, item *models.ShoppingList) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetShoppingListByID(ctx context.Context, id string, userID *string) (*models.ShoppingList, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.ShoppingList{}).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Where("id = ?", id)
	if userID != nil && strings.TrimSpace(*userID) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*userID))
	}
	var item models.ShoppingList
	err := query.First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListShoppingListsByUser(ctx context.Context, userID string) ([]models.ShoppingList, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.ShoppingList
	if err := s.db.WithContext(ctx).
		Model(&models.ShoppingList{}).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListShoppingLists(ctx context.Context, params repository.ListShoppingListsParams) ([]models.ShoppingList, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ShoppingList{}).Preload("Items")
	if params.UserID != nil && strings.TrimSpace(*params.UserID) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.UserID))
	}
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.ShoppingList
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountShoppingLists(ctx context.Context, params repository.ListShoppingListsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := s.db.WithContext(ctx).Model(&models.ShoppingList{})
	if params.UserID != nil && strings.TrimSpace(*params.UserID) != "" {
		query = query.Where("user_id = ?", strings.TrimSpace(*params.UserID))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateShoppingList(ctx context.Context, id string, userID string, updates map[string]any) (int64, error) {
	if s == nil || s.db == nil || len(updates) == 0 {
		return 0, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.ShoppingList{}).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteShoppingList(ctx context.Context, id string, userID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Delete(&models.ShoppingList{})
	return res.RowsAffected, res.Error
}

func (s *Store) AddListItem(ctx context.Context, item *models.ShoppingListItem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetListItemForUser(ctx context.Context, itemID string, userID string) (*models.ShoppingListItem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ShoppingListItem
	err := s.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Preload("Product").
		Preload("Product.Category").
		Joins("JOIN shopping_lists AS l ON l.id = shopping_list_items.shopping_list_id").
		Where("shopping_list_items.id = ?", itemID).
		Where("l.user_id = ?", userID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateListItem(ctx context.Context, itemID string, updates map[string]any) error {
	if s == nil || s.db == nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return s.db.WithContext(ctx).
		Model(&models.ShoppingListItem{}).
		Where("id = ?", itemID).
		Updates(updates).
		Error
}

func (s *Store) DeleteListItem(ctx context.Context, itemID string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.ShoppingListItem{}).Error
}

// --- helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
