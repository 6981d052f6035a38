package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

// PriceStatsService answers "how much does this product cost, and where is
// it cheapest" over a trailing window of price observations. It is a pure
// read layer: every call re-fetches from the store and reduces in memory.
type PriceStatsService struct {
	Repo repository.ObservationStore

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

type LowestPrice struct {
	Price        decimal.Decimal `json:"price"`
	MarketID     string          `json:"market_id"`
	MarketName   string          `json:"market_name"`
	City         *string         `json:"city,omitempty"`
	PurchaseDate time.Time       `json:"purchase_date"`
}

type MarketPriceSummary struct {
	MarketID     string          `json:"market_id"`
	MarketName   string          `json:"market_name"`
	City         *string         `json:"city,omitempty"`
	AveragePrice decimal.Decimal `json:"average_price"`
	LowestPrice  decimal.Decimal `json:"lowest_price"`
	HighestPrice decimal.Decimal `json:"highest_price"`
	SampleCount  int             `json:"sample_count"`
}

func (s *PriceStatsService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *PriceStatsService) windowed(ctx context.Context, productID string, windowDays int) ([]models.PriceObservation, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window days must be positive", ErrInvalidArgument)
	}
	since := s.now().AddDate(0, 0, -windowDays)
	return s.Repo.ListProductObservationsSince(ctx, productID, since)
}

// AveragePrice returns the arithmetic mean price of a product over the
// trailing window, or ErrNoData when no observation falls inside it.
func (s *PriceStatsService) AveragePrice(ctx context.Context, productID string, windowDays int) (decimal.Decimal, error) {
	obs, err := s.windowed(ctx, productID, windowDays)
	if err != nil {
		return decimal.Zero, err
	}
	if len(obs) == 0 {
		return decimal.Zero, ErrNoData
	}
	return averageOf(obs), nil
}

// LowestPrice returns the cheapest in-window observation. Ties on price are
// broken by earliest purchase date, then lowest id, so repeated calls with
// the same data return the same observation.
func (s *PriceStatsService) LowestPrice(ctx context.Context, productID string, windowDays int) (*LowestPrice, error) {
	obs, err := s.windowed(ctx, productID, windowDays)
	if err != nil {
		return nil, err
	}
	lowest := lowestOf(obs)
	if lowest == nil {
		return nil, ErrNoData
	}
	out := &LowestPrice{
		Price:        lowest.Price,
		MarketID:     lowest.MarketID,
		PurchaseDate: lowest.PurchaseDate,
	}
	if lowest.Market != nil {
		out.MarketName = lowest.Market.Name
		out.City = lowest.Market.City
	}
	return out, nil
}

// CompareAcrossMarkets groups in-window observations by market and reports
// mean (2 decimal places), min, max and sample count per market, cheapest
// mean first. An empty slice means the product has no in-window data.
func (s *PriceStatsService) CompareAcrossMarkets(ctx context.Context, productID string, windowDays int) ([]MarketPriceSummary, error) {
	obs, err := s.windowed(ctx, productID, windowDays)
	if err != nil {
		return nil, err
	}
	return summarizeByMarket(obs), nil
}

func averageOf(obs []models.PriceObservation) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range obs {
		sum = sum.Add(o.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(obs))))
}

func lowestOf(obs []models.PriceObservation) *models.PriceObservation {
	var lowest *models.PriceObservation
	for i := range obs {
		o := &obs[i]
		if lowest == nil {
			lowest = o
			continue
		}
		switch o.Price.Cmp(lowest.Price) {
		case -1:
			lowest = o
		case 0:
			if o.PurchaseDate.Before(lowest.PurchaseDate) ||
				(o.PurchaseDate.Equal(lowest.PurchaseDate) && o.ID < lowest.ID) {
				lowest = o
			}
		}
	}
	return lowest
}

func summarizeByMarket(obs []models.PriceObservation) []MarketPriceSummary {
	groups := map[string]*MarketPriceSummary{}
	sums := map[string]decimal.Decimal{}
	order := make([]string, 0)

	for _, o := range obs {
		group, ok := groups[o.MarketID]
		if !ok {
			group = &MarketPriceSummary{
				MarketID:    o.MarketID,
				LowestPrice: o.Price,
				HighestPrice: o.Price,
			}
			if o.Market != nil {
				group.MarketName = o.Market.Name
				group.City = o.Market.City
			}
			groups[o.MarketID] = group
			sums[o.MarketID] = decimal.Zero
			order = append(order, o.MarketID)
		}
		if o.Price.Cmp(group.LowestPrice) < 0 {
			group.LowestPrice = o.Price
		}
		if o.Price.Cmp(group.HighestPrice) > 0 {
			group.HighestPrice = o.Price
		}
		sums[o.MarketID] = sums[o.MarketID].Add(o.Price)
		group.SampleCount++
	}

	out := make([]MarketPriceSummary, 0, len(order))
	for _, marketID := range order {
		group := groups[marketID]
		group.AveragePrice = sums[marketID].
			Div(decimal.NewFromInt(int64(group.SampleCount))).
			Round(2)
		out = append(out, *group)
	}
	// Stable: markets with equal means keep first-observation order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AveragePrice.Cmp(out[j].AveragePrice) < 0
	})
	return out
}
