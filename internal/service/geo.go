package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"meucarrim/internal/models"
	"meucarrim/internal/repository"
)

const earthRadiusKm = 6371

// MarketLocatorService finds markets near a coordinate, ordered by
// great-circle distance. Markets without a full coordinate pair are
// invisible to it.
type MarketLocatorService struct {
	Repo repository.MarketStore
}

type NearbyMarket struct {
	Market     models.Market `json:"market"`
	DistanceKm float64       `json:"distance_km"`
}

// NearbyMarkets returns markets within radiusKm of the origin, closest
// first, at most limit entries. Distances keep full precision here; callers
// round for display.
func (s *MarketLocatorService) NearbyMarkets(ctx context.Context, originLat, originLon, radiusKm float64, limit int) ([]NearbyMarket, error) {
	if originLat < -90 || originLat > 90 {
		return nil, fmt.Errorf("%w: latitude must be within [-90, 90]", ErrInvalidArgument)
	}
	if originLon < -180 || originLon > 180 {
		return nil, fmt.Errorf("%w: longitude must be within [-180, 180]", ErrInvalidArgument)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidArgument)
	}

	markets, err := s.Repo.ListMarketsWithCoordinates(ctx)
	if err != nil {
		return nil, err
	}

	origin := models.Coordinate{Lat: originLat, Lon: originLon}
	nearby := make([]NearbyMarket, 0, len(markets))
	for _, market := range markets {
		pos, ok := market.Coordinates()
		if !ok {
			continue
		}
		distance := haversineKm(origin, pos)
		if distance > radiusKm {
			continue
		}
		nearby = append(nearby, NearbyMarket{Market: market, DistanceKm: distance})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

// haversineKm is the great-circle distance between two points on a sphere
// of radius 6371 km.
func haversineKm(from, to models.Coordinate) float64 {
	dLat := toRadians(to.Lat - from.Lat)
	dLon := toRadians(to.Lon - from.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Lat))*math.Cos(toRadians(to.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
