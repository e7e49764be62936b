package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
	"github.com/tinashelorenzi/grease-monkey/pkg/response"
)

type ChatHandler struct {
	chatUseCase    *usecase.ChatUseCase
	requestUseCase *usecase.RequestUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, requestUseCase *usecase.RequestUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:    chatUseCase,
		requestUseCase: requestUseCase,
	}
}

type createSessionRequest struct {
	RequestID string `json:"request_id" validate:"required"`
}

type sendMessageRequest struct {
	SenderType string `json:"sender_type" validate:"required,oneof=customer mechanic"`
	SenderName string `json:"sender_name" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// CreateSession finds or creates the single chat session for a request. The
// request is loaded first so the session inherits its participant names and
// the caller's ownership is verified.
func (h *ChatHandler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	customerID := c.Get("uid").(string)

	request, err := h.requestUseCase.GetRequest(c.Request().Context(), customerID, req.RequestID)
	if err != nil {
		return response.Error(c, err)
	}

	session, err := h.chatUseCase.FindOrCreateSession(c.Request().Context(), usecase.FindOrCreateSessionInput{
		RequestID:    request.RequestID,
		CustomerID:   request.CustomerID,
		MechanicID:   request.MechanicID,
		CustomerName: request.CustomerName,
		MechanicName: request.MechanicName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, session)
}

func (h *ChatHandler) GetSessionByRequest(c echo.Context) error {
	callerID := c.Get("uid").(string)

	session, err := h.chatUseCase.GetSessionByRequestID(c.Request().Context(), c.Param("requestId"), callerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, session)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	senderID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		SessionID:  c.Param("id"),
		SenderID:   senderID,
		SenderType: req.SenderType,
		SenderName: req.SenderName,
		Content:    req.Content,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	callerID := c.Get("uid").(string)

	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), c.Param("id"), callerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	readerID := c.Get("uid").(string)

	marked, err := h.chatUseCase.MarkMessagesRead(c.Request().Context(), c.Param("id"), readerID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"marked": marked})
}
