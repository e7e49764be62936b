package repository

import (
	"context"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
)

// StatusUpdate is a provider-side status patch applied to both physical
// copies of a request.
type StatusUpdate struct {
	Status           string
	QuoteAmount      float64
	QuoteDescription string
}

type RequestRepository interface {
	// Create writes the global copy and the mechanic-scoped copy atomically,
	// under the same RequestID.
	Create(ctx context.Context, req *entity.ServiceRequest) error

	GetByRequestID(ctx context.Context, requestID string) (*entity.ServiceRequest, error)

	// Watch emits the current and each subsequent snapshot of the global copy.
	// A nil element means the request is not (yet) visible, which callers must
	// treat as "still propagating" until their own timeout elapses. The
	// channel closes when ctx is cancelled or the underlying stream fails.
	Watch(ctx context.Context, requestID string) (<-chan *entity.ServiceRequest, error)

	// DeleteGlobal and DeleteMechanicCopy each succeed when their copy is
	// already absent, so cancellation is idempotent.
	DeleteGlobal(ctx context.Context, requestID string) error
	DeleteMechanicCopy(ctx context.Context, mechanicID, requestID string) error

	// UpdateStatus applies a provider-side transition to both copies. Only
	// reachable from the dev surface; in production the mechanics app writes
	// status changes.
	UpdateStatus(ctx context.Context, requestID, mechanicID string, update StatusUpdate) error
}
