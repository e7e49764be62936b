package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/internal/infrastructure/ratelimit"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(chatRepo repository.ChatRepository) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		rateLimiter: ratelimit.NewRateLimiter(),
	}
}

type FindOrCreateSessionInput struct {
	RequestID    string
	CustomerID   string
	MechanicID   string
	CustomerName string
	MechanicName string
}

type SendMessageInput struct {
	SessionID  string
	SenderID   string
	SenderType string
	SenderName string
	Content    string
}

// MessagesUpdate is one snapshot of a session's full ordered message list.
// UnreadCount covers mechanic-sent messages the customer has not read yet.
type MessagesUpdate struct {
	Messages    []*entity.ChatMessage `json:"messages"`
	UnreadCount int                   `json:"unread_count"`
}

// isParticipant reports whether uid is one of the session's two parties.
// Every read and write on a session is gated on this.
func isParticipant(session *entity.ChatSession, uid string) bool {
	return uid == session.CustomerID || uid == session.MechanicID
}

// SessionIDForRequest derives the chat session id from the request id
// (UUIDv5). Two concurrent find-or-create calls for the same request compute
// the same id, so the duplicate-session race cannot happen.
func SessionIDForRequest(requestID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("chat-session:"+requestID)).String()
}

// FindOrCreateSession returns the single chat session for a request,
// creating it on first need. Idempotent under concurrent invocation.
func (uc *ChatUseCase) FindOrCreateSession(ctx context.Context, input FindOrCreateSessionInput) (*entity.ChatSession, error) {
	sessionID := SessionIDForRequest(input.RequestID)

	session, err := uc.chatRepo.GetSession(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	session = &entity.ChatSession{
		SessionID:    sessionID,
		RequestID:    input.RequestID,
		CustomerID:   input.CustomerID,
		MechanicID:   input.MechanicID,
		CustomerName: input.CustomerName,
		MechanicName: input.MechanicName,
	}
	if err := uc.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Info("Chat session %s created for request %s", sessionID, input.RequestID)
	return session, nil
}

func (uc *ChatUseCase) GetSessionByRequestID(ctx context.Context, requestID, callerID string) (*entity.ChatSession, error) {
	session, err := uc.chatRepo.GetSessionByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(session, callerID) {
		return nil, errors.Forbidden("Caller is not a participant of this chat session", nil)
	}
	return session, nil
}

// SendMessage appends a message and then refreshes the session's denormalized
// summary. The two writes are not atomic: a reader may briefly see the new
// message before the summary catches up, which is fine because the summary is
// advisory list-view state.
func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.ChatMessage, error) {
	if input.SenderType != entity.SenderTypeCustomer && input.SenderType != entity.SenderTypeMechanic {
		return nil, errors.BadRequest("senderType must be customer or mechanic", nil)
	}
	if input.Content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(input.SenderID, "send_message")
	if !allowed {
		logger.Warn("SendMessage rate limited: sender %s must wait %v", input.SenderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	session, err := uc.chatRepo.GetSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(session, input.SenderID) {
		return nil, errors.Forbidden("Sender is not a participant of this chat session", nil)
	}

	message := &entity.ChatMessage{
		SenderID:   input.SenderID,
		SenderType: input.SenderType,
		SenderName: input.SenderName,
		Content:    input.Content,
		Read:       false,
		Timestamp:  time.Now().UnixMilli(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, session.SessionID, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.UpdateSessionSummary(ctx, session.SessionID, message.Content, message.Timestamp); err != nil {
		logger.Warn("Failed to update summary for session %s: %v", session.SessionID, err)
	}

	return message, nil
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, sessionID, callerID string) ([]*entity.ChatMessage, error) {
	session, err := uc.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(session, callerID) {
		return nil, errors.Forbidden("Caller is not a participant of this chat session", nil)
	}
	return uc.chatRepo.ListMessages(ctx, sessionID)
}

// Listen streams message snapshots for a session, ordered by timestamp
// ascending. The cancel function must be called on every exit path.
func (uc *ChatUseCase) Listen(ctx context.Context, sessionID, callerID string) (<-chan MessagesUpdate, context.CancelFunc, error) {
	session, err := uc.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !isParticipant(session, callerID) {
		return nil, nil, errors.Forbidden("Caller is not a participant of this chat session", nil)
	}

	listenCtx, cancel := context.WithCancel(ctx)

	raw, err := uc.chatRepo.WatchMessages(listenCtx, sessionID)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	out := make(chan MessagesUpdate, 8)

	go func() {
		defer close(out)

		for messages := range raw {
			unread := 0
			for _, m := range messages {
				if m.SenderType == entity.SenderTypeMechanic && !m.Read {
					unread++
				}
			}

			select {
			case out <- MessagesUpdate{Messages: messages, UnreadCount: unread}:
			case <-listenCtx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

// MarkMessagesRead flips read on all currently-unread counterpart messages.
// Individual failures are logged and skipped: a message left unread is safe
// degradation, not data loss. Returns how many messages were marked.
func (uc *ChatUseCase) MarkMessagesRead(ctx context.Context, sessionID, readerID string) (int, error) {
	session, err := uc.chatRepo.GetSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if !isParticipant(session, readerID) {
		return 0, errors.Forbidden("Caller is not a participant of this chat session", nil)
	}

	counterpart := entity.SenderTypeMechanic
	if readerID == session.MechanicID {
		counterpart = entity.SenderTypeCustomer
	}

	unread, err := uc.chatRepo.ListUnread(ctx, sessionID, counterpart)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, message := range unread {
		if err := uc.chatRepo.MarkMessageRead(ctx, sessionID, message.ID); err != nil {
			logger.Warn("Failed to mark message %s as read in session %s: %v", message.ID, sessionID, err)
			continue
		}
		marked++
	}

	return marked, nil
}
