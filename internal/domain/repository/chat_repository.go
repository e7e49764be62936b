package repository

import (
	"context"

	"github.com/tinashelorenzi/grease-monkey/internal/domain/entity"
)

type ChatRepository interface {
	// Session methods
	CreateSession(ctx context.Context, session *entity.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	GetSessionByRequestID(ctx context.Context, requestID string) (*entity.ChatSession, error)
	UpdateSessionSummary(ctx context.Context, sessionID, lastMessage string, at int64) error

	// Message methods
	CreateMessage(ctx context.Context, sessionID string, message *entity.ChatMessage) error
	ListMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)
	ListUnread(ctx context.Context, sessionID, senderType string) ([]*entity.ChatMessage, error)
	MarkMessageRead(ctx context.Context, sessionID, messageID string) error

	// WatchMessages emits the full ordered message list on every change.
	// The channel closes when ctx is cancelled or the stream fails.
	WatchMessages(ctx context.Context, sessionID string) (<-chan []*entity.ChatMessage, error)
}
