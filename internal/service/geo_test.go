package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

// stubMarketStore is a test-only in-memory repository.MarketStore. The
// locator only calls ListMarketsWithCoordinates.
type stubMarketStore struct {
	markets []models.Market
}

func (s *stubMarketStore) CreateMarket(ctx context.Context, item *models.Market) error { return nil }
func (s *stubMarketStore) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	return nil, nil
}
func (s *stubMarketStore) FindMarketByNameCity(ctx context.Context, name string, city *string, excludeID string) (*models.Market, error) {
	return nil, nil
}
func (s *stubMarketStore) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	return nil, nil
}
func (s *stubMarketStore) CountMarkets(ctx context.Context, params repository.ListMarketsParams) (int64, error) {
	return 0, nil
}
func (s *stubMarketStore) ListMarketsByCity(ctx context.Context, city string) ([]models.Market, error) {
	return nil, nil
}
func (s *stubMarketStore) ListMarketsWithCoordinates(ctx context.Context) ([]models.Market, error) {
	var out []models.Market
	for _, m := range s.markets {
		if _, ok := m.Coordinates(); ok {
			out = append(out, m)
		}
	}
	return out, nil
}
func (s *stubMarketStore) ListPopularMarkets(ctx context.Context, limit int) ([]repository.MarketCount, error) {
	return nil, nil
}
func (s *stubMarketStore) ListCities(ctx context.Context) ([]string, error)  { return nil, nil }
func (s *stubMarketStore) ListStates(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubMarketStore) UpdateMarket(ctx context.Context, id string, updates map[string]any) error {
	return nil
}
func (s *stubMarketStore) DeleteMarket(ctx context.Context, id string) error { return nil }

func market(id string, lat, lon float64) models.Market {
	return models.Market{ID: id, Name: id, Latitude: &lat, Longitude: &lon}
}

func locator(markets ...models.Market) *MarketLocatorService {
	return &MarketLocatorService{Repo: &stubMarketStore{markets: markets}}
}

func TestHaversineKm_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	d := haversineKm(models.Coordinate{Lat: 0, Lon: 0}, models.Coordinate{Lat: 0, Lon: 1})
	// One degree of longitude at the equator is about 111.2 km.
	if math.Abs(d-111.2) > 0.1 {
		t.Fatalf("distance=%f want ~111.2", d)
	}
}

func TestHaversineKm_Symmetric(t *testing.T) {
	a := models.Coordinate{Lat: -8.05, Lon: -34.9}
	b := models.Coordinate{Lat: -7.99, Lon: -34.85}
	if d1, d2 := haversineKm(a, b), haversineKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric: %f vs %f", d1, d2)
	}
}

func TestHaversineKm_ZeroForSamePoint(t *testing.T) {
	p := models.Coordinate{Lat: -8.05, Lon: -34.9}
	if d := haversineKm(p, p); d != 0 {
		t.Fatalf("distance=%f want=0", d)
	}
}

func TestNearbyMarkets_FiltersByRadiusAndSortsByDistance(t *testing.T) {
	svc := locator(
		market("far", 0, 1),    // ~111 km east
		market("near", 0, 0.1), // ~11 km east
		market("here", 0, 0.01),
	)
	nearby, err := svc.NearbyMarkets(context.Background(), 0, 0, 50, 20)
	if err != nil {
		t.Fatalf("NearbyMarkets: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("len=%d want=2", len(nearby))
	}
	if nearby[0].Market.ID != "here" || nearby[1].Market.ID != "near" {
		t.Fatalf("order=%s,%s want=here,near", nearby[0].Market.ID, nearby[1].Market.ID)
	}
	if nearby[0].DistanceKm >= nearby[1].DistanceKm {
		t.Fatalf("distances not ascending: %f >= %f", nearby[0].DistanceKm, nearby[1].DistanceKm)
	}
}

func TestNearbyMarkets_WiderRadiusIncludesFarMarket(t *testing.T) {
	svc := locator(market("far", 0, 1))
	nearby, err := svc.NearbyMarkets(context.Background(), 0, 0, 150, 20)
	if err != nil {
		t.Fatalf("NearbyMarkets: %v", err)
	}
	if len(nearby) != 1 || nearby[0].Market.ID != "far" {
		t.Fatalf("nearby=%v want far included", nearby)
	}
}

func TestNearbyMarkets_SkipsMarketsWithoutCoordinates(t *testing.T) {
	lat := 0.0
	svc := locator(
		market("located", 0, 0.05),
		models.Market{ID: "unlocated", Name: "unlocated"},
		models.Market{ID: "half", Name: "half", Latitude: &lat},
	)
	nearby, err := svc.NearbyMarkets(context.Background(), 0, 0, 100, 20)
	if err != nil {
		t.Fatalf("NearbyMarkets: %v", err)
	}
	if len(nearby) != 1 || nearby[0].Market.ID != "located" {
		t.Fatalf("nearby=%v want only located", nearby)
	}
}

func TestNearbyMarkets_TruncatesToLimit(t *testing.T) {
	svc := locator(
		market("a", 0, 0.01),
		market("b", 0, 0.02),
		market("c", 0, 0.03),
	)
	nearby, err := svc.NearbyMarkets(context.Background(), 0, 0, 100, 2)
	if err != nil {
		t.Fatalf("NearbyMarkets: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("len=%d want=2", len(nearby))
	}
	if nearby[0].Market.ID != "a" || nearby[1].Market.ID != "b" {
		t.Fatalf("order=%s,%s want=a,b", nearby[0].Market.ID, nearby[1].Market.ID)
	}
}

func TestNearbyMarkets_RejectsBadArguments(t *testing.T) {
	svc := locator()
	cases := []struct {
		name               string
		lat, lon, radiusKm float64
		limit              int
	}{
		{"lat too low", -91, 0, 10, 20},
		{"lat too high", 91, 0, 10, 20},
		{"lon too low", 0, -181, 10, 20},
		{"lon too high", 0, 181, 10, 20},
		{"zero radius", 0, 0, 0, 20},
		{"negative radius", 0, 0, -5, 20},
		{"zero limit", 0, 0, 10, 0},
	}
	for _, tc := range cases {
		_, err := svc.NearbyMarkets(context.Background(), tc.lat, tc.lon, tc.radiusKm, tc.limit)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: err=%v want ErrInvalidArgument", tc.name, err)
		}
	}
}
