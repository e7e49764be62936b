package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
)

type fakeRequestRepo struct {
	global         map[string]*entity.ServiceRequest
	mechanicCopies map[string]*entity.ServiceRequest

	watchCh chan *entity.ServiceRequest

	createErr         error
	deleteGlobalErr   error
	deleteMechanicErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{
		global:         map[string]*entity.ServiceRequest{},
		mechanicCopies: map[string]*entity.ServiceRequest{},
	}
}

func copyKey(mechanicID, requestID string) string {
	return mechanicID + "/" + requestID
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *entity.ServiceRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.global[req.RequestID] = req
	f.mechanicCopies[copyKey(req.MechanicID, req.RequestID)] = req
	return nil
}

func (f *fakeRequestRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.ServiceRequest, error) {
	req, ok := f.global[requestID]
	if !ok {
		return nil, errors.NotFound("Service request", nil)
	}
	return req, nil
}

func (f *fakeRequestRepo) Watch(ctx context.Context, requestID string) (<-chan *entity.ServiceRequest, error) {
	return f.watchCh, nil
}

func (f *fakeRequestRepo) DeleteGlobal(ctx context.Context, requestID string) error {
	if f.deleteGlobalErr != nil {
		return f.deleteGlobalErr
	}
	delete(f.global, requestID)
	return nil
}

func (f *fakeRequestRepo) DeleteMechanicCopy(ctx context.Context, mechanicID, requestID string) error {
	if f.deleteMechanicErr != nil {
		return f.deleteMechanicErr
	}
	delete(f.mechanicCopies, copyKey(mechanicID, requestID))
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, requestID, mechanicID string, update repository.StatusUpdate) error {
	req, ok := f.global[requestID]
	if !ok {
		return errors.NotFound("Service request", nil)
	}
	req.Status = update.Status
	req.QuoteAmount = update.QuoteAmount
	req.QuoteDescription = update.QuoteDescription
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func requestTestFixture() (*RequestUseCase, *fakeRequestRepo, *fakeChatRepo) {
	requestRepo := newFakeRequestRepo()
	mechanicRepo := &fakeMechanicRepo{mechanics: []*entity.Mechanic{
		mechanicAt("mech-1", 2, 4.5, 50),
	}}
	userRepo := &fakeUserRepo{users: map[string]*entity.User{
		"cust-1": {ID: "cust-1", FirstName: "Thabo", LastName: "Nkosi", Phone: "+27115550100"},
	}}
	chatRepo := newFakeChatRepo()
	chatUC := NewChatUseCase(chatRepo)
	uc := NewRequestUseCase(requestRepo, mechanicRepo, userRepo, chatUC)
	return uc, requestRepo, chatRepo
}

func TestCreateRequestWritesBothCopies(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	req, err := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "battery",
		Location:    entity.Location{Latitude: -26.2, Longitude: 28.04},
		Description: "Car won't start",
	})

	assert.NoError(t, err)
	assert.Equal(t, entity.RequestStatusPending, req.Status)
	assert.Equal(t, "Thabo Nkosi", req.CustomerName)
	assert.Equal(t, "Test mech-1", req.MechanicName)
	assert.Equal(t, "+27115550100", req.CustomerPhone)
	assert.NotZero(t, req.CreatedAt)

	assert.Contains(t, repo.global, req.RequestID)
	assert.Contains(t, repo.mechanicCopies, copyKey("mech-1", req.RequestID))
}

func TestRequestIDFormat(t *testing.T) {
	id := newRequestID()

	parts := strings.Split(id, "_")
	if assert.Len(t, parts, 3) {
		assert.Equal(t, "req", parts[0])
		assert.Len(t, parts[2], 9)
	}
	assert.NotEqual(t, id, newRequestID())
}

func TestCreateRequestUnknownMechanic(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	_, err := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-missing",
		ServiceType: "battery",
	})

	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Empty(t, repo.global)
}

func TestGetRequestOwnership(t *testing.T) {
	uc, _, _ := requestTestFixture()

	created, err := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})
	assert.NoError(t, err)

	_, err = uc.GetRequest(context.Background(), "cust-2", created.RequestID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	got, err := uc.GetRequest(context.Background(), "cust-1", created.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, created.RequestID, got.RequestID)
}

func TestCancelRequestRemovesBothCopies(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	created, _ := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	err := uc.CancelRequest(context.Background(), "cust-1", created.RequestID, "")

	assert.NoError(t, err)
	assert.Empty(t, repo.global)
	assert.Empty(t, repo.mechanicCopies)
}

func TestCancelRequestIsIdempotent(t *testing.T) {
	uc, _, _ := requestTestFixture()

	created, _ := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	assert.NoError(t, uc.CancelRequest(context.Background(), "cust-1", created.RequestID, ""))
	// Second cancel finds nothing to delete, which is still success, but the
	// caller must supply the mechanic id because the request is gone.
	assert.NoError(t, uc.CancelRequest(context.Background(), "cust-1", created.RequestID, "mech-1"))
}

func TestCancelRequestRequiresMechanicIDWhenUnreadable(t *testing.T) {
	uc, _, _ := requestTestFixture()

	err := uc.CancelRequest(context.Background(), "cust-1", "req_gone", "")

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestCancelRequestPartialFailure(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	created, _ := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	repo.deleteMechanicErr = errors.Unavailable("store down", nil)
	err := uc.CancelRequest(context.Background(), "cust-1", created.RequestID, "")

	assert.True(t, errors.Is(err, "PARTIAL_WRITE_FAILURE"))
	// The half that failed must still be there for a retry.
	assert.Contains(t, repo.mechanicCopies, copyKey("mech-1", created.RequestID))
}

func TestCancelRequestBothSidesFail(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	created, _ := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	repo.deleteGlobalErr = errors.Unavailable("store down", nil)
	repo.deleteMechanicErr = errors.Unavailable("store down", nil)
	err := uc.CancelRequest(context.Background(), "cust-1", created.RequestID, "")

	assert.True(t, errors.Is(err, "UNAVAILABLE"))
}

func TestCancelRequestForbiddenForOtherCustomer(t *testing.T) {
	uc, repo, _ := requestTestFixture()

	created, _ := uc.CreateRequest(context.Background(), "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	err := uc.CancelRequest(context.Background(), "cust-2", created.RequestID, "")

	assert.True(t, errors.Is(err, "FORBIDDEN"))
	assert.Contains(t, repo.global, created.RequestID)
}

func TestForceStatusTransitions(t *testing.T) {
	uc, _, _ := requestTestFixture()
	ctx := context.Background()

	created, _ := uc.CreateRequest(ctx, "cust-1", CreateRequestInput{
		MechanicID:  "mech-1",
		ServiceType: "towing",
	})

	// pending cannot jump straight to quoted.
	err := uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusQuoted, 500, "tow fee")
	assert.True(t, errors.Is(err, "CONFLICT"))

	assert.NoError(t, uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusAccepted, 0, ""))

	// A quote without a positive amount is rejected.
	err = uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusQuoted, 0, "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	assert.NoError(t, uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusQuoted, 500, "tow fee"))
	assert.NoError(t, uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusCompleted, 0, ""))

	// Terminal: nothing more is allowed.
	err = uc.ForceStatus(ctx, created.RequestID, entity.RequestStatusAccepted, 0, "")
	assert.True(t, errors.Is(err, "CONFLICT"))
}

func TestForceStatusRejectsUnknownStatus(t *testing.T) {
	uc, _, _ := requestTestFixture()

	err := uc.ForceStatus(context.Background(), "req_x", "exploded", 0, "")

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func collectUpdates(t *testing.T, updates <-chan RequestUpdate, n int) []RequestUpdate {
	t.Helper()
	var got []RequestUpdate
	for i := 0; i < n; i++ {
		select {
		case update, ok := <-updates:
			if !ok {
				return got
			}
			got = append(got, update)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for update %d", i)
		}
	}
	return got
}

func TestWatchClassifiesLifecycleEvents(t *testing.T) {
	uc, repo, _ := requestTestFixture()
	repo.watchCh = make(chan *entity.ServiceRequest, 4)

	updates, cancel, err := uc.Watch(context.Background(), "req_1")
	assert.NoError(t, err)
	defer cancel()

	repo.watchCh <- nil
	repo.watchCh <- &entity.ServiceRequest{RequestID: "req_1", Status: entity.RequestStatusPending}
	repo.watchCh <- &entity.ServiceRequest{RequestID: "req_1", Status: entity.RequestStatusDeclined}
	close(repo.watchCh)

	got := collectUpdates(t, updates, 3)
	if assert.Len(t, got, 3) {
		assert.Equal(t, RequestEventNotFound, got[0].Event)
		assert.Nil(t, got[0].Request)
		assert.Equal(t, RequestEventPending, got[1].Event)
		assert.Equal(t, RequestEventDeclined, got[2].Event)
	}
}

func TestWatchCreatesChatSessionOnAcceptance(t *testing.T) {
	uc, repo, chatRepo := requestTestFixture()
	repo.watchCh = make(chan *entity.ServiceRequest, 4)

	updates, cancel, err := uc.Watch(context.Background(), "req_2")
	assert.NoError(t, err)
	defer cancel()

	repo.watchCh <- &entity.ServiceRequest{
		RequestID:    "req_2",
		CustomerID:   "cust-1",
		MechanicID:   "mech-1",
		Status:       entity.RequestStatusAccepted,
		CustomerName: "Thabo Nkosi",
		MechanicName: "Test mech-1",
	}
	close(repo.watchCh)

	collectUpdates(t, updates, 1)

	session, err := chatRepo.GetSession(context.Background(), SessionIDForRequest("req_2"))
	assert.NoError(t, err)
	assert.Equal(t, "req_2", session.RequestID)
	assert.Equal(t, "cust-1", session.CustomerID)
}

func TestWatchCreatesChatSessionWhenAcceptanceWasSkipped(t *testing.T) {
	uc, repo, chatRepo := requestTestFixture()
	repo.watchCh = make(chan *entity.ServiceRequest, 4)

	updates, cancel, err := uc.Watch(context.Background(), "req_3")
	assert.NoError(t, err)
	defer cancel()

	// A slow watcher can see quoted as its first snapshot; the session must
	// still come into existence.
	repo.watchCh <- &entity.ServiceRequest{
		RequestID:  "req_3",
		CustomerID: "cust-1",
		MechanicID: "mech-1",
		Status:     entity.RequestStatusQuoted,
	}
	close(repo.watchCh)

	got := collectUpdates(t, updates, 1)
	if assert.Len(t, got, 1) {
		assert.Equal(t, RequestEventQuoteReceived, got[0].Event)
	}

	_, err = chatRepo.GetSession(context.Background(), SessionIDForRequest("req_3"))
	assert.NoError(t, err)
}
