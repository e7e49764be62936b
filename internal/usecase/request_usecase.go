package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/internal/infrastructure/ratelimit"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

// RequestEvent classifies a lifecycle change surfaced to the watching client.
type RequestEvent string

const (
	RequestEventPending       RequestEvent = "pending"
	RequestEventAccepted      RequestEvent = "accepted"
	RequestEventQuoteReceived RequestEvent = "quote_received"
	RequestEventCompleted     RequestEvent = "completed"
	RequestEventDeclined      RequestEvent = "declined"

	// RequestEventNotFound means the watched request is not visible in the
	// store. Directly after creation this is "still propagating"; callers
	// apply their own timeout before treating it as gone.
	RequestEventNotFound RequestEvent = "not_found"
)

// RequestUpdate is a full-state snapshot, not a delta. A slow watcher may
// skip intermediate statuses; the last update observed always wins.
type RequestUpdate struct {
	Event   RequestEvent           `json:"event"`
	Request *entity.ServiceRequest `json:"request,omitempty"`
}

type CreateRequestInput struct {
	MechanicID  string
	ServiceType string
	Location    entity.Location
	Address     string
	Description string
}

type RequestUseCase struct {
	requestRepo  repository.RequestRepository
	mechanicRepo repository.MechanicRepository
	userRepo     repository.UserRepository
	chatUseCase  *ChatUseCase
	rateLimiter  *ratelimit.RateLimiter
}

func NewRequestUseCase(
	requestRepo repository.RequestRepository,
	mechanicRepo repository.MechanicRepository,
	userRepo repository.UserRepository,
	chatUseCase *ChatUseCase,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo:  requestRepo,
		mechanicRepo: mechanicRepo,
		userRepo:     userRepo,
		chatUseCase:  chatUseCase,
		rateLimiter:  ratelimit.NewRateLimiter(),
	}
}

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newRequestID generates a process-unique request id. Timestamp plus a
// 9-character random suffix makes collisions negligible at this request
// volume; there is no collision check against the store.
func newRequestID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = requestIDAlphabet[rand.Intn(len(requestIDAlphabet))]
	}
	return fmt.Sprintf("req_%d_%s", time.Now().UnixMilli(), suffix)
}

// CreateRequest validates everything before any write happens, then stores
// both physical copies atomically under one request id.
func (uc *RequestUseCase) CreateRequest(ctx context.Context, customerID string, input CreateRequestInput) (*entity.ServiceRequest, error) {
	allowed, waitTime := uc.rateLimiter.Allow(customerID, "create_request")
	if !allowed {
		logger.Warn("CreateRequest rate limited: customer %s must wait %v", customerID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another request", waitTime)
	}

	mechanic, err := uc.mechanicRepo.GetByID(ctx, input.MechanicID)
	if err != nil {
		return nil, err
	}

	customer, err := uc.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	req := &entity.ServiceRequest{
		RequestID:     newRequestID(),
		CustomerID:    customer.ID,
		CustomerName:  customer.DisplayName(),
		CustomerPhone: customer.Phone,
		MechanicID:    mechanic.ID,
		MechanicName:  mechanic.FullName(),
		ServiceType:   input.ServiceType,
		Location:      input.Location,
		Address:       input.Address,
		Description:   input.Description,
		Status:        entity.RequestStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("Service request %s created for mechanic %s", req.RequestID, req.MechanicID)
	return req, nil
}

func (uc *RequestUseCase) GetRequest(ctx context.Context, customerID, requestID string) (*entity.ServiceRequest, error) {
	req, err := uc.requestRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != customerID {
		return nil, errors.Forbidden("Request belongs to another customer", nil)
	}
	return req, nil
}

// Watch subscribes to lifecycle changes of a request. The returned cancel
// function must be called on every exit path; an unreleased watch keeps a
// live store subscription open indefinitely.
func (uc *RequestUseCase) Watch(ctx context.Context, requestID string) (<-chan RequestUpdate, context.CancelFunc, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	snapshots, err := uc.requestRepo.Watch(watchCtx, requestID)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	updates := make(chan RequestUpdate, 8)

	go func() {
		defer close(updates)

		chatReady := false
		for snap := range snapshots {
			update := RequestUpdate{Request: snap}
			if snap == nil {
				update.Event = RequestEventNotFound
			} else {
				update.Event = eventForStatus(snap.Status)

				// Snapshots are full-state replacements: a fast
				// pending->accepted->quoted sequence can reach a slow watcher
				// as a single quoted snapshot. The chat session is therefore
				// ensured for accepted and every later status, not only on an
				// explicit accepted event.
				if !chatReady && chatSessionNeeded(snap.Status) {
					if _, err := uc.chatUseCase.FindOrCreateSession(watchCtx, FindOrCreateSessionInput{
						RequestID:    snap.RequestID,
						CustomerID:   snap.CustomerID,
						MechanicID:   snap.MechanicID,
						CustomerName: snap.CustomerName,
						MechanicName: snap.MechanicName,
					}); err != nil {
						logger.Warn("Failed to ensure chat session for request %s: %v", requestID, err)
					} else {
						chatReady = true
					}
				}
			}

			select {
			case updates <- update:
			case <-watchCtx.Done():
				return
			}
		}
	}()

	return updates, cancel, nil
}

func eventForStatus(status string) RequestEvent {
	switch status {
	case entity.RequestStatusAccepted:
		return RequestEventAccepted
	case entity.RequestStatusQuoted:
		return RequestEventQuoteReceived
	case entity.RequestStatusCompleted:
		return RequestEventCompleted
	case entity.RequestStatusDeclined:
		return RequestEventDeclined
	}
	return RequestEventPending
}

func chatSessionNeeded(status string) bool {
	switch status {
	case entity.RequestStatusAccepted, entity.RequestStatusQuoted, entity.RequestStatusCompleted:
		return true
	}
	return false
}

// CancelRequest deletes both physical copies. Either side already being
// absent counts as success, so a second cancel of the same request is a
// no-op. When exactly one side fails the error names the surviving copy;
// partial success is never reported as success. Chat history belonging to
// the request is left untouched.
func (uc *RequestUseCase) CancelRequest(ctx context.Context, customerID, requestID, mechanicID string) error {
	req, err := uc.requestRepo.GetByRequestID(ctx, requestID)
	if err == nil {
		if req.CustomerID != customerID {
			return errors.Forbidden("Request belongs to another customer", nil)
		}
		if mechanicID == "" {
			mechanicID = req.MechanicID
		}
	} else if !errors.Is(err, "NOT_FOUND") {
		return err
	}
	if mechanicID == "" {
		return errors.BadRequest("mechanicId is required when the request is no longer readable", nil)
	}

	globalErr := uc.requestRepo.DeleteGlobal(ctx, requestID)
	mechanicErr := uc.requestRepo.DeleteMechanicCopy(ctx, mechanicID, requestID)

	switch {
	case globalErr != nil && mechanicErr != nil:
		return errors.Unavailable("Failed to cancel service request; both copies still exist", globalErr)
	case globalErr != nil:
		return errors.PartialWrite("Mechanic copy deleted but the global request copy could not be removed", globalErr)
	case mechanicErr != nil:
		return errors.PartialWrite("Global request deleted but the mechanic copy could not be removed", mechanicErr)
	}

	logger.Info("Service request %s cancelled", requestID)
	return nil
}

// ForceStatus applies a provider-side transition. It backs the dev-only
// simulation endpoint; production status changes are written by the
// mechanics app, never through this service.
func (uc *RequestUseCase) ForceStatus(ctx context.Context, requestID, status string, quoteAmount float64, quoteDescription string) error {
	if !entity.ValidStatus(status) {
		return errors.BadRequest("Unknown request status", nil)
	}
	if status == entity.RequestStatusQuoted && quoteAmount <= 0 {
		return errors.BadRequest("A quote requires a positive amount", nil)
	}

	req, err := uc.requestRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		return err
	}
	if !transitionAllowed(req.Status, status) {
		return errors.Conflict(fmt.Sprintf("Cannot transition request from %s to %s", req.Status, status))
	}

	return uc.requestRepo.UpdateStatus(ctx, requestID, req.MechanicID, repository.StatusUpdate{
		Status:           status,
		QuoteAmount:      quoteAmount,
		QuoteDescription: quoteDescription,
	})
}

func transitionAllowed(from, to string) bool {
	switch from {
	case entity.RequestStatusPending:
		return to == entity.RequestStatusAccepted || to == entity.RequestStatusDeclined
	case entity.RequestStatusAccepted:
		return to == entity.RequestStatusQuoted
	case entity.RequestStatusQuoted:
		return to == entity.RequestStatusCompleted
	}
	return false
}
