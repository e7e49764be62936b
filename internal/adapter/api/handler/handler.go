package handler

import (
	"github.com/tinashelorenzi/grease-monkey/internal/usecase"
)

var (
	mechanicHandler *MechanicHandler
	requestHandler  *RequestHandler
	chatHandler     *ChatHandler
)

func Setup(
	matchingUseCase *usecase.MatchingUseCase,
	requestUseCase *usecase.RequestUseCase,
	chatUseCase *usecase.ChatUseCase,
) {
	mechanicHandler = NewMechanicHandler(matchingUseCase)
	requestHandler = NewRequestHandler(requestUseCase)
	chatHandler = NewChatHandler(chatUseCase, requestUseCase)
}

func GetMechanicHandler() *MechanicHandler {
	return mechanicHandler
}

func GetRequestHandler() *RequestHandler {
	return requestHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}
