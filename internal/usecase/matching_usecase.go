package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/pkg/geo"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

// maxMatchResults caps the ranked list returned to the customer.
const maxMatchResults = 10

// ratingTieBreakKm is the distance band inside which two mechanics are
// considered equally far and ranked by rating instead.
const ratingTieBreakKm = 1.0

type MatchingUseCase struct {
	mechanicRepo    repository.MechanicRepository
	defaultRadiusKm float64
}

func NewMatchingUseCase(mechanicRepo repository.MechanicRepository, defaultRadiusKm float64) *MatchingUseCase {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = entity.DefaultMaxDistanceKm
	}
	return &MatchingUseCase{
		mechanicRepo:    mechanicRepo,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// FindNearby returns up to 10 mechanics ranked by distance from center.
//
// The bounding-box query is only a pre-filter; every candidate is re-checked
// against the true Haversine distance. A mechanic is kept only when the
// distance satisfies both the customer's radius and the mechanic's own
// declared service radius. serviceType is advisory: mechanics without the
// matching specialization are not excluded, the customer sees them and
// decides.
func (uc *MatchingUseCase) FindNearby(ctx context.Context, center entity.Location, serviceType string, radiusKm float64) ([]*entity.Mechanic, error) {
	if radiusKm <= 0 {
		radiusKm = uc.defaultRadiusKm
	}

	origin := geo.Point{Latitude: center.Latitude, Longitude: center.Longitude}
	box := geo.NewBoundingBox(origin, radiusKm)

	candidates, err := uc.mechanicRepo.FindInBoundingBox(ctx, box)
	if err != nil {
		return nil, err
	}

	matched := make([]*entity.Mechanic, 0, len(candidates))
	for _, mechanic := range candidates {
		if mechanic.Location == nil {
			continue
		}

		distance := geo.Distance(origin, geo.Point{
			Latitude:  mechanic.Location.Latitude,
			Longitude: mechanic.Location.Longitude,
		})

		// Mutual-consent filter: the customer's search radius and the
		// mechanic's service radius must both be satisfied. Boundary
		// distances are included.
		if distance > radiusKm || distance > mechanic.MaxDistanceKm() {
			continue
		}

		mechanic.Distance = distance
		matched = append(matched, mechanic)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if math.Abs(matched[i].Distance-matched[j].Distance) < ratingTieBreakKm {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].Distance < matched[j].Distance
	})

	if len(matched) > maxMatchResults {
		matched = matched[:maxMatchResults]
	}

	logger.Debug("FindNearby: %d candidates, %d matched within %.1f km (serviceType=%q)",
		len(candidates), len(matched), radiusKm, serviceType)

	return matched, nil
}

func (uc *MatchingUseCase) GetMechanic(ctx context.Context, id string) (*entity.Mechanic, error) {
	return uc.mechanicRepo.GetByID(ctx, id)
}
