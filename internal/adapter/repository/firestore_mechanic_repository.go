package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/geo"
)

// candidateLimit bounds the pre-filter query. The longitude and mutual-radius
// re-filters discard candidates after the fetch, so in a dense area a tight
// limit could starve the ranked list below its cap before the best nearby
// mechanics are even seen. 50 leaves generous headroom over the result cap of
// 10 while keeping the read bounded.
const candidateLimit = 50

type firestoreMechanicRepository struct {
	client *firestore.Client
}

func NewFirestoreMechanicRepository(client *firestore.Client) repository.MechanicRepository {
	return &firestoreMechanicRepository{
		client: client,
	}
}

func (r *firestoreMechanicRepository) FindInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]*entity.Mechanic, error) {
	// Firestore allows a range filter on one field only, so the query covers
	// latitude and longitude is filtered in memory below. The range-filtered
	// field must also be the first ordering clause.
	query := r.client.Collection("mechanics").Query.
		Where("isOnline", "==", true).
		Where("isAvailable", "==", true).
		Where("isActive", "==", true).
		Where("location.latitude", ">=", box.MinLat).
		Where("location.latitude", "<=", box.MaxLat).
		OrderBy("location.latitude", firestore.Asc).
		Limit(candidateLimit)

	iter := query.Documents(ctx)
	var mechanics []*entity.Mechanic

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr("Failed to query mechanics", err)
		}

		var mechanic entity.Mechanic
		if err := doc.DataTo(&mechanic); err != nil {
			return nil, errors.Internal("Failed to parse mechanic data", err)
		}
		mechanic.ID = doc.Ref.ID

		if mechanic.Location == nil {
			continue
		}
		if !box.ContainsLongitude(mechanic.Location.Longitude) {
			continue
		}

		mechanics = append(mechanics, &mechanic)
	}

	return mechanics, nil
}

func (r *firestoreMechanicRepository) GetByID(ctx context.Context, id string) (*entity.Mechanic, error) {
	doc, err := r.client.Collection("mechanics").Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Mechanic", err)
		}
		return nil, wrapStoreErr("Failed to get mechanic", err)
	}

	var mechanic entity.Mechanic
	if err := doc.DataTo(&mechanic); err != nil {
		return nil, errors.Internal("Failed to parse mechanic data", err)
	}
	mechanic.ID = doc.Ref.ID

	return &mechanic, nil
}
