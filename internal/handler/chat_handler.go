package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buseagkoc/construction-chatbot/internal/pkg/errcode"
	"github.com/buseagkoc/construction-chatbot/internal/pkg/response"
	"github.com/buseagkoc/construction-chatbot/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		response.Error(c, errcode.ErrInvalid, "message is required")
		return
	}
	answer, err := h.chat.Chat(c.Request.Context(), message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, answer)
}
