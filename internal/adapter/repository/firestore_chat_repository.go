package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
	"github.com/tinashelorenzi/grease-monkey/internal/domain/repository"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messagesRef(sessionID string) *firestore.CollectionRef {
	return r.client.Collection("chatSessions").Doc(sessionID).Collection("messages")
}

func (r *firestoreChatRepository) CreateSession(ctx context.Context, session *entity.ChatSession) error {
	now := time.Now().UnixMilli()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.LastMessageTime = now

	_, err := r.client.Collection("chatSessions").Doc(session.SessionID).Set(ctx, session)
	if err != nil {
		return wrapStoreErr("Failed to create chat session", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	doc, err := r.client.Collection("chatSessions").Doc(sessionID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Chat session", err)
		}
		return nil, wrapStoreErr("Failed to get chat session", err)
	}

	var session entity.ChatSession
	if err := doc.DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse chat session data", err)
	}
	session.SessionID = doc.Ref.ID

	return &session, nil
}

func (r *firestoreChatRepository) GetSessionByRequestID(ctx context.Context, requestID string) (*entity.ChatSession, error) {
	docs, err := r.client.Collection("chatSessions").Query.
		Where("requestId", "==", requestID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr("Failed to query chat session", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Chat session", nil)
	}

	var session entity.ChatSession
	if err := docs[0].DataTo(&session); err != nil {
		return nil, errors.Internal("Failed to parse chat session data", err)
	}
	session.SessionID = docs[0].Ref.ID

	return &session, nil
}

func (r *firestoreChatRepository) UpdateSessionSummary(ctx context.Context, sessionID, lastMessage string, at int64) error {
	_, err := r.client.Collection("chatSessions").Doc(sessionID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: lastMessage},
		{Path: "lastMessageTime", Value: at},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return wrapStoreErr("Failed to update chat session summary", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, sessionID string, message *entity.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	_, err := r.messagesRef(sessionID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return wrapStoreErr("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	iter := r.messagesRef(sessionID).OrderBy("timestamp", firestore.Asc).Documents(ctx)

	var messages []*entity.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr("Failed to iterate messages", err)
		}

		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		message.ID = doc.Ref.ID

		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreChatRepository) ListUnread(ctx context.Context, sessionID, senderType string) ([]*entity.ChatMessage, error) {
	docs, err := r.messagesRef(sessionID).Query.
		Where("senderType", "==", senderType).
		Where("read", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, wrapStoreErr("Failed to query unread messages", err)
	}

	var messages []*entity.ChatMessage
	for _, doc := range docs {
		var message entity.ChatMessage
		if err := doc.DataTo(&message); err != nil {
			logger.Warn("Skipping malformed message %s in session %s: %v", doc.Ref.ID, sessionID, err)
			continue
		}
		message.ID = doc.Ref.ID
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreChatRepository) MarkMessageRead(ctx context.Context, sessionID, messageID string) error {
	_, err := r.messagesRef(sessionID).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if isNotFound(err) {
			// Message deleted between query and update, nothing to flip.
			return nil
		}
		return wrapStoreErr("Failed to mark message as read", err)
	}

	return nil
}

func (r *firestoreChatRepository) WatchMessages(ctx context.Context, sessionID string) (<-chan []*entity.ChatMessage, error) {
	query := r.messagesRef(sessionID).OrderBy("timestamp", firestore.Asc)
	snaps := query.Snapshots(ctx)

	ch := make(chan []*entity.ChatMessage, 8)

	go func() {
		defer close(ch)
		defer snaps.Stop()

		for {
			qs, err := snaps.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				logger.Error("Message watch stream for session %s failed: %v", sessionID, err)
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				logger.Error("Failed to read message snapshot for session %s: %v", sessionID, err)
				return
			}

			messages := make([]*entity.ChatMessage, 0, len(docs))
			for _, doc := range docs {
				var message entity.ChatMessage
				if err := doc.DataTo(&message); err != nil {
					logger.Warn("Skipping malformed message %s in session %s: %v", doc.Ref.ID, sessionID, err)
					continue
				}
				message.ID = doc.Ref.ID
				messages = append(messages, &message)
			}

			select {
			case ch <- messages:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
