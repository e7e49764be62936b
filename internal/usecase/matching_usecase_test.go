package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/geo"
)

type fakeMechanicRepo struct {
	mechanics []*entity.Mechanic
	err       error
}

func (f *fakeMechanicRepo) FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]*entity.Mechanic, error) {
	if f.err != nil {
		return nil, f.err
	}
	// The real store pre-filters by latitude only; the use case must not rely
	// on anything tighter than that.
	var out []*entity.Mechanic
	for _, m := range f.mechanics {
		if m.Location == nil || (m.Location.Latitude >= box.MinLat && m.Location.Latitude <= box.MaxLat) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMechanicRepo) GetByID(ctx context.Context, id string) (*entity.Mechanic, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.mechanics {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.NotFound("Mechanic", nil)
}

// mechanicAt places a mechanic roughly km kilometers north of the origin.
// One degree of latitude is ~111.19 km on the sphere used by the distance
// calculation.
func mechanicAt(id string, km, rating, maxDistance float64) *entity.Mechanic {
	return &entity.Mechanic{
		ID:        id,
		FirstName: "Test",
		LastName:  id,
		Rating:    rating,
		Location: &entity.MechanicLocation{
			Latitude:  km / 111.19,
			Longitude: 0,
		},
		Preferences: entity.MechanicPreferences{MaxDistance: maxDistance},
		IsOnline:    true,
		IsAvailable: true,
		IsActive:    true,
	}
}

func TestFindNearbyMutualRadiusFilter(t *testing.T) {
	repo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		mechanicAt("close", 5, 4.0, 50),
		mechanicAt("outside-customer-radius", 30, 5.0, 50),
		mechanicAt("outside-own-radius", 8, 5.0, 6),
	}}
	uc := NewMatchingUseCase(repo, 50)

	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 20)

	assert.NoError(t, err)
	if assert.Len(t, result, 1) {
		assert.Equal(t, "close", result[0].ID)
		assert.InDelta(t, 5.0, result[0].Distance, 0.1)
	}
}

func TestFindNearbyDefaultRadius(t *testing.T) {
	repo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		mechanicAt("near", 10, 4.0, 50),
		mechanicAt("far", 40, 4.0, 50),
	}}
	uc := NewMatchingUseCase(repo, 15)

	// radius <= 0 falls back to the configured default of 15 km.
	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 0)

	assert.NoError(t, err)
	if assert.Len(t, result, 1) {
		assert.Equal(t, "near", result[0].ID)
	}
}

func TestFindNearbySortsByDistanceWithRatingTieBreak(t *testing.T) {
	repo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		mechanicAt("far-good", 12, 5.0, 50),
		mechanicAt("near-ok", 3.0, 3.5, 50),
		// Within 1 km of near-ok: rating decides, so it ranks first despite
		// being marginally farther.
		mechanicAt("near-great", 3.4, 4.9, 50),
	}}
	uc := NewMatchingUseCase(repo, 50)

	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 20)

	assert.NoError(t, err)
	if assert.Len(t, result, 3) {
		assert.Equal(t, "near-great", result[0].ID)
		assert.Equal(t, "near-ok", result[1].ID)
		assert.Equal(t, "far-good", result[2].ID)
	}
}

func TestFindNearbyCapsResults(t *testing.T) {
	repo := &fakeMechanicRepo{}
	for i := 0; i < 15; i++ {
		repo.mechanics = append(repo.mechanics, mechanicAt(fmt.Sprintf("m%02d", i), float64(i+1), 4.0, 50))
	}
	uc := NewMatchingUseCase(repo, 50)

	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 50)

	assert.NoError(t, err)
	assert.Len(t, result, maxMatchResults)
	// Closest mechanic survives the cut.
	assert.Equal(t, "m00", result[0].ID)
}

func TestFindNearbySkipsMechanicsWithoutLocation(t *testing.T) {
	noLocation := &entity.Mechanic{ID: "ghost", IsOnline: true, IsAvailable: true, IsActive: true}
	repo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		noLocation,
		mechanicAt("real", 2, 4.0, 50),
	}}
	uc := NewMatchingUseCase(repo, 50)

	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 10)

	assert.NoError(t, err)
	if assert.Len(t, result, 1) {
		assert.Equal(t, "real", result[0].ID)
	}
}

func TestFindNearbyServiceTypeIsAdvisory(t *testing.T) {
	repo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		mechanicAt("specialist", 2, 4.0, 50),
	}}
	repo.mechanics[0].Specializations = []string{"tires"}
	uc := NewMatchingUseCase(repo, 50)

	// Asking for an engine job still returns the tire specialist; the
	// customer decides whether to pick them.
	result, err := uc.FindNearby(context.Background(), entity.Location{}, "engine", 10)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestFindNearbyPropagatesStoreError(t *testing.T) {
	repo := &fakeMechanicRepo{err: errors.Unavailable("store down", nil)}
	uc := NewMatchingUseCase(repo, 50)

	_, err := uc.FindNearby(context.Background(), entity.Location{}, "", 10)

	assert.True(t, errors.Is(err, "UNAVAILABLE"))
}

func TestFindNearbyEmptyResult(t *testing.T) {
	uc := NewMatchingUseCase(&fakeMechanicRepo{}, 50)

	result, err := uc.FindNearby(context.Background(), entity.Location{}, "", 10)

	assert.NoError(t, err)
	assert.Empty(t, result)
}
