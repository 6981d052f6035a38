package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

// stubObservationStore is a test-only in-memory repository.ObservationStore.
// Only ListProductObservationsSince matters to the stats tests; the rest of
// the interface has trivial bodies.
type stubObservationStore struct {
	obs []models.PriceObservation
}

func (s *stubObservationStore) InsertObservation(ctx context.Context, item *models.PriceObservation) error {
	return nil
}
func (s *stubObservationStore) GetObservationByID(ctx context.Context, id string) (*models.PriceObservation, error) {
	return nil, nil
}
func (s *stubObservationStore) ListObservations(ctx context.Context, params repository.ListObservationsParams) ([]models.PriceObservation, error) {
	return nil, nil
}
func (s *stubObservationStore) CountObservations(ctx context.Context, params repository.ListObservationsParams) (int64, error) {
	return 0, nil
}
func (s *stubObservationStore) ListProductObservationsSince(ctx context.Context, productID string, since time.Time) ([]models.PriceObservation, error) {
	var out []models.PriceObservation
	for _, o := range s.obs {
		if o.ProductID != productID {
			continue
		}
		if o.PurchaseDate.Before(since) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
func (s *stubObservationStore) UpdateObservation(ctx context.Context, id string, updates map[string]any) error {
	return nil
}
func (s *stubObservationStore) DeleteObservation(ctx context.Context, id string) error { return nil }
func (s *stubObservationStore) CountObservationsByMarket(ctx context.Context, marketID string) (int64, error) {
	return 0, nil
}
func (s *stubObservationStore) DeleteObservationsByMarket(ctx context.Context, marketID string) (int64, error) {
	return 0, nil
}
func (s *stubObservationStore) DeleteObservationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

var statsNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func statsService(obs ...models.PriceObservation) *PriceStatsService {
	return &PriceStatsService{
		Repo: &stubObservationStore{obs: obs},
		Now:  func() time.Time { return statsNow },
	}
}

func obs(id, productID, marketID, price string, daysAgo int) models.PriceObservation {
	p, err := decimal.NewFromString(price)
	if err != nil {
		panic(err)
	}
	return models.PriceObservation{
		ID:           id,
		ProductID:    productID,
		MarketID:     marketID,
		Price:        p,
		PurchaseDate: statsNow.AddDate(0, 0, -daysAgo),
	}
}

func withMarket(o models.PriceObservation, name string, city string) models.PriceObservation {
	o.Market = &models.Market{ID: o.MarketID, Name: name, City: &city}
	return o
}

func TestAveragePrice_WindowExcludesOldObservations(t *testing.T) {
	svc := statsService(
		obs("o1", "p1", "m1", "10.00", 5),
		obs("o2", "p1", "m1", "20.00", 10),
		obs("o3", "p1", "m1", "99.00", 45), // outside a 30-day window
	)
	avg, err := svc.AveragePrice(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("AveragePrice: %v", err)
	}
	if avg.Cmp(decimal.RequireFromString("15")) != 0 {
		t.Fatalf("avg=%s want=15", avg.String())
	}
}

func TestAveragePrice_NoData(t *testing.T) {
	svc := statsService(
		obs("o1", "p1", "m1", "10.00", 45),
	)
	_, err := svc.AveragePrice(context.Background(), "p1", 30)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v want ErrNoData", err)
	}
}

func TestAveragePrice_RejectsNonPositiveWindow(t *testing.T) {
	svc := statsService()
	for _, window := range []int{0, -7} {
		_, err := svc.AveragePrice(context.Background(), "p1", window)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("window=%d err=%v want ErrInvalidArgument", window, err)
		}
	}
}

func TestLowestPrice_PicksCheapestAcrossMarkets(t *testing.T) {
	svc := statsService(
		withMarket(obs("o1", "p1", "m1", "12.50", 3), "Mercado A", "Recife"),
		withMarket(obs("o2", "p1", "m2", "9.90", 8), "Mercado B", "Olinda"),
		withMarket(obs("o3", "p1", "m3", "11.00", 1), "Mercado C", "Recife"),
	)
	lowest, err := svc.LowestPrice(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("LowestPrice: %v", err)
	}
	if lowest.MarketID != "m2" {
		t.Fatalf("market=%s want=m2", lowest.MarketID)
	}
	if lowest.Price.Cmp(decimal.RequireFromString("9.90")) != 0 {
		t.Fatalf("price=%s want=9.90", lowest.Price.String())
	}
	if lowest.MarketName != "Mercado B" {
		t.Fatalf("market name=%s want=Mercado B", lowest.MarketName)
	}
}

func TestLowestPrice_TieBreaksByDateThenID(t *testing.T) {
	svc := statsService(
		obs("o2", "p1", "m2", "10.00", 5),
		obs("o1", "p1", "m1", "10.00", 9),
		obs("o3", "p1", "m3", "10.00", 9),
	)
	lowest, err := svc.LowestPrice(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("LowestPrice: %v", err)
	}
	// o1 and o3 share the earliest date; o1 has the lower id.
	if lowest.MarketID != "m1" {
		t.Fatalf("market=%s want=m1", lowest.MarketID)
	}
}

func TestLowestPrice_NoData(t *testing.T) {
	svc := statsService()
	_, err := svc.LowestPrice(context.Background(), "p1", 30)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v want ErrNoData", err)
	}
}

func TestCompareAcrossMarkets_GroupsAndSortsByMean(t *testing.T) {
	svc := statsService(
		withMarket(obs("o1", "p1", "m1", "10.00", 2), "Mercado A", "Recife"),
		withMarket(obs("o2", "p1", "m1", "14.00", 6), "Mercado A", "Recife"),
		withMarket(obs("o3", "p1", "m2", "9.00", 4), "Mercado B", "Olinda"),
		withMarket(obs("o4", "p1", "m2", "11.00", 8), "Mercado B", "Olinda"),
		withMarket(obs("o5", "p1", "m3", "8.50", 1), "Mercado C", "Recife"),
	)
	summaries, err := svc.CompareAcrossMarkets(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("CompareAcrossMarkets: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("len=%d want=3", len(summaries))
	}
	if summaries[0].MarketID != "m3" || summaries[1].MarketID != "m2" || summaries[2].MarketID != "m1" {
		t.Fatalf("order=%s,%s,%s want=m3,m2,m1",
			summaries[0].MarketID, summaries[1].MarketID, summaries[2].MarketID)
	}
	m1 := summaries[2]
	if m1.AveragePrice.Cmp(decimal.RequireFromString("12.00")) != 0 {
		t.Fatalf("m1 avg=%s want=12.00", m1.AveragePrice.String())
	}
	if m1.LowestPrice.Cmp(decimal.RequireFromString("10.00")) != 0 {
		t.Fatalf("m1 low=%s want=10.00", m1.LowestPrice.String())
	}
	if m1.HighestPrice.Cmp(decimal.RequireFromString("14.00")) != 0 {
		t.Fatalf("m1 high=%s want=14.00", m1.HighestPrice.String())
	}
	if m1.SampleCount != 2 {
		t.Fatalf("m1 samples=%d want=2", m1.SampleCount)
	}
}

func TestCompareAcrossMarkets_MeanRoundsToTwoPlaces(t *testing.T) {
	svc := statsService(
		obs("o1", "p1", "m1", "10.00", 1),
		obs("o2", "p1", "m1", "10.00", 2),
		obs("o3", "p1", "m1", "10.01", 3),
	)
	summaries, err := svc.CompareAcrossMarkets(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("CompareAcrossMarkets: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len=%d want=1", len(summaries))
	}
	if got := summaries[0].AveragePrice.String(); got != "10" {
		t.Fatalf("avg=%s want=10", got)
	}
}

func TestCompareAcrossMarkets_EqualMeansKeepFirstSeenOrder(t *testing.T) {
	svc := statsService(
		obs("o1", "p1", "mB", "10.00", 2),
		obs("o2", "p1", "mA", "10.00", 4),
	)
	summaries, err := svc.CompareAcrossMarkets(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("CompareAcrossMarkets: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len=%d want=2", len(summaries))
	}
	// Stable sort: mB was observed first so it stays ahead of mA.
	if summaries[0].MarketID != "mB" || summaries[1].MarketID != "mA" {
		t.Fatalf("order=%s,%s want=mB,mA", summaries[0].MarketID, summaries[1].MarketID)
	}
}

func TestCompareAcrossMarkets_EmptyWindow(t *testing.T) {
	svc := statsService(
		obs("o1", "p1", "m1", "10.00", 60),
	)
	summaries, err := svc.CompareAcrossMarkets(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("CompareAcrossMarkets: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("len=%d want=0", len(summaries))
	}
}

func TestCompareAcrossMarkets_SampleCountsPartitionObservations(t *testing.T) {
	observations := []models.PriceObservation{
		obs("o1", "p1", "m1", "10.00", 1),
		obs("o2", "p1", "m2", "11.00", 2),
		obs("o3", "p1", "m1", "12.00", 3),
		obs("o4", "p1", "m3", "13.00", 4),
		obs("o5", "p1", "m2", "14.00", 5),
	}
	svc := statsService(observations...)
	summaries, err := svc.CompareAcrossMarkets(context.Background(), "p1", 30)
	if err != nil {
		t.Fatalf("CompareAcrossMarkets: %v", err)
	}
	total := 0
	for _, s := range summaries {
		total += s.SampleCount
	}
	if total != len(observations) {
		t.Fatalf("sample total=%d want=%d", total, len(observations))
	}
}
