package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/adapter/api/middleware"
	ws "github.com/tinashelorenzi/grease-monkey/internal/infrastructure/websocket"
	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/errors"
	"github.com/tinashelorenzi/grease-monkey/pkg/logger"
)

// WebSocketHandler bridges push subscriptions to WebSocket connections. One
// connection carries exactly one subscription; closing either side releases
// the other.
type WebSocketHandler struct {
	requestUseCase *usecase.RequestUseCase
	chatUseCase    *usecase.ChatUseCase
	authMiddleware *middleware.AuthMiddleware
	watchTimeout   time.Duration
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(
	requestUseCase *usecase.RequestUseCase,
	chatUseCase *usecase.ChatUseCase,
	authMiddleware *middleware.AuthMiddleware,
	watchTimeout time.Duration,
) *WebSocketHandler {
	return &WebSocketHandler{
		requestUseCase: requestUseCase,
		chatUseCase:    chatUseCase,
		authMiddleware: authMiddleware,
		watchTimeout:   watchTimeout,
	}
}

// authenticate resolves the caller's uid. Browsers cannot set headers on a
// WebSocket upgrade, so a token query parameter is accepted alongside the
// usual Authorization header.
func (h *WebSocketHandler) authenticate(c echo.Context) (string, error) {
	token := c.QueryParam("token")
	if token == "" {
		authHeader := c.Request().Header.Get("Authorization")
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if token == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}

	uid, err := h.authMiddleware.GetUIDFromToken(c.Request().Context(), token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return uid, nil
}

// WatchRequest streams lifecycle updates for one service request. If the
// request never becomes visible within the watch timeout, a single timeout
// event is sent and the stream ends.
func (h *WebSocketHandler) WatchRequest(c echo.Context) error {
	uid, err := h.authenticate(c)
	if err != nil {
		return err
	}

	requestID := c.Param("requestId")

	// The request context dies as soon as this handler returns, which would
	// tear down the subscription under the live connection. The watch runs on
	// a background context instead; ReadPump cancels it on disconnect.
	updates, cancel, err := h.requestUseCase.Watch(context.Background(), requestID)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewStreamClient(uid, conn)
	go client.ReadPump(cancel)
	go client.WritePump()

	go h.forwardRequestUpdates(client, updates, cancel, requestID)

	return nil
}

func (h *WebSocketHandler) forwardRequestUpdates(client *ws.StreamClient, updates <-chan usecase.RequestUpdate, cancel context.CancelFunc, requestID string) {
	defer close(client.Send)
	defer cancel()

	timeout := time.NewTimer(h.watchTimeout)
	defer timeout.Stop()
	seen := false

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Event != usecase.RequestEventNotFound {
				seen = true
			}
			payload, err := json.Marshal(update)
			if err != nil {
				logger.Error("Failed to marshal update for request %s: %v", requestID, err)
				continue
			}
			if !client.Deliver(payload) {
				return
			}
		case <-timeout.C:
			if seen {
				continue
			}
			payload, _ := json.Marshal(map[string]string{"event": "timeout"})
			client.Deliver(payload)
			logger.Warn("Watch on request %s timed out without the request appearing", requestID)
			return
		}
	}
}

// ListenSession streams full message-list snapshots for one chat session.
func (h *WebSocketHandler) ListenSession(c echo.Context) error {
	uid, err := h.authenticate(c)
	if err != nil {
		return err
	}

	sessionID := c.Param("id")

	snapshots, cancel, err := h.chatUseCase.Listen(context.Background(), sessionID, uid)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		cancel()
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewStreamClient(uid, conn)
	go client.ReadPump(cancel)
	go client.WritePump()

	go func() {
		defer close(client.Send)
		defer cancel()

		for snapshot := range snapshots {
			payload, err := json.Marshal(snapshot)
			if err != nil {
				logger.Error("Failed to marshal messages for session %s: %v", sessionID, err)
				continue
			}
			if !client.Deliver(payload) {
				return
			}
		}
	}()

	return nil
}
