package repository

import (
	"context"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/pkg/geo"
)

type MechanicRepository interface {
	// FindInBoundingBox returns online, available, active mechanics whose
	// stored latitude falls inside the box. Longitude is post-filtered by the
	// implementation because the store cannot range-query two fields in one
	// query. The result is a superset of the true radius; callers must
	// re-filter by real distance.
	FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]*entity.Mechanic, error)
	GetByID(ctx context.Context, id string) (*entity.Mechanic, error)
}
