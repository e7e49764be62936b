package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

type firestoreRequestRepository struct {
	client *firestore.Client
}

func NewFirestoreRequestRepository(client *firestore.Client) repository.RequestRepository {
	return &firestoreRequestRepository{
		client: client,
	}
}

func (r *firestoreRequestRepository) mechanicCopyRef(mechanicID, requestID string) *firestore.DocumentRef {
	return r.client.Collection("mechanics").Doc(mechanicID).Collection("requests").Doc(requestID)
}

// findGlobalRef resolves the storage ref of the global copy. Returns nil when
// the request is not present.
func (r *firestoreRequestRepository) findGlobalRef(ctx context.Context, requestID string) (*firestore.DocumentRef, error) {
	docs, err := r.client.Collection("requests").Query.
		Where("requestId", "==", requestID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr("Failed to look up service request", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0].Ref, nil
}

// Create writes both physical copies in a single transaction, so a failure on
// either side leaves no orphaned half-written request behind. The global copy
// gets a storage-assigned document id with RequestID as a field; the mechanic
// copy uses RequestID as its document id so cancellation can address it
// without a query.
func (r *firestoreRequestRepository) Create(ctx context.Context, req *entity.ServiceRequest) error {
	globalRef := r.client.Collection("requests").NewDoc()
	mechanicRef := r.mechanicCopyRef(req.MechanicID, req.RequestID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(globalRef, req); err != nil {
			return err
		}
		return tx.Create(mechanicRef, req)
	})
	if err != nil {
		return wrapStoreErr("Failed to create service request", err)
	}

	req.DocID = globalRef.ID
	return nil
}

func (r *firestoreRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*entity.ServiceRequest, error) {
	docs, err := r.client.Collection("requests").Query.
		Where("requestId", "==", requestID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr("Failed to get service request", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Service request", nil)
	}

	var req entity.ServiceRequest
	if err := docs[0].DataTo(&req); err != nil {
		return nil, errors.Internal("Failed to parse service request data", err)
	}
	req.DocID = docs[0].Ref.ID

	return &req, nil
}

func (r *firestoreRequestRepository) Watch(ctx context.Context, requestID string) (<-chan *entity.ServiceRequest, error) {
	query := r.client.Collection("requests").Query.
		Where("requestId", "==", requestID).
		Limit(1)
	snaps := query.Snapshots(ctx)

	ch := make(chan *entity.ServiceRequest, 8)

	go func() {
		defer close(ch)
		defer snaps.Stop()

		for {
			qs, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				logger.Error("Request watch stream for %s failed: %v", requestID, err)
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read request snapshot for %s: %v", requestID, err)
				return
			}

			if len(docs) == 0 {
				// Not visible yet, or deleted. The caller's timeout policy
				// decides which.
				select {
				case ch <- nil:
				case <-ctx.Done():
					return
				}
				continue
			}

			var req entity.ServiceRequest
			if err := docs[0].DataTo(&req); err != nil {
				logger.Error("Failed to parse request snapshot for %s: %v", requestID, err)
				continue
			}
			req.DocID = docs[0].Ref.ID

			select {
			case ch <- &req:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (r *firestoreRequestRepository) DeleteGlobal(ctx context.Context, requestID string) error {
	ref, err := r.findGlobalRef(ctx, requestID)
	if err != nil {
		return err
	}
	if ref == nil {
		// Already gone.
		return nil
	}

	if _, err := ref.Delete(ctx); err != nil {
		return wrapStoreErr("Failed to delete service request", err)
	}
	return nil
}

func (r *firestoreRequestRepository) DeleteMechanicCopy(ctx context.Context, mechanicID, requestID string) error {
	// Firestore deletes are no-ops on absent documents, which gives us
	// idempotent cancellation for free.
	if _, err := r.mechanicCopyRef(mechanicID, requestID).Delete(ctx); err != nil {
		return wrapStoreErr("Failed to delete mechanic request copy", err)
	}
	return nil
}

func (r *firestoreRequestRepository) UpdateStatus(ctx context.Context, requestID, mechanicID string, update repository.StatusUpdate) error {
	globalRef, err := r.findGlobalRef(ctx, requestID)
	if err != nil {
		return err
	}
	if globalRef == nil {
		return errors.NotFound("Service request", nil)
	}

	now := time.Now().UnixMilli()
	updates := []firestore.Update{
		{Path: "status", Value: update.Status},
		{Path: "updatedAt", Value: now},
	}
	switch update.Status {
	case entity.RequestStatusAccepted:
		updates = append(updates, firestore.Update{Path: "acceptedAt", Value: now})
	case entity.RequestStatusQuoted:
		updates = append(updates,
			firestore.Update{Path: "quoteAmount", Value: update.QuoteAmount},
			firestore.Update{Path: "quoteDescription", Value: update.QuoteDescription},
			firestore.Update{Path: "quotedAt", Value: now},
		)
	case entity.RequestStatusCompleted:
		updates = append(updates, firestore.Update{Path: "completedAt", Value: now})
	}

	mechanicRef := r.mechanicCopyRef(mechanicID, requestID)

	err = r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Reads must come before writes inside a transaction.
		_, mechErr := tx.Get(mechanicRef)
		if mechErr != nil && !isNotFound(mechErr) {
			return mechErr
		}

		if err := tx.Update(globalRef, updates); err != nil {
			return err
		}
		if mechErr == nil {
			return tx.Update(mechanicRef, updates)
		}
		return nil
	})
	if err != nil {
		return wrapStoreErr("Failed to update request status", err)
	}

	return nil
}
