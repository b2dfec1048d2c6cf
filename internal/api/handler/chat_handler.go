package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pawmart/support-system/internal/api/metrics"
	"github.com/pawmart/support-system/internal/core/ports"
	"github.com/pawmart/support-system/internal/core/service"
)

// ChatHandler answers support questions for authenticated users.
type ChatHandler struct {
	chatService ports.ChatService
}

func NewChatHandler(chatService ports.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatRequest struct {
	Question string `json:"question" validate:"required"`
}

type chatResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Ask handles POST /chat.
func (h *ChatHandler) Ask(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	answer, err := h.chatService.Ask(c.Request().Context(), req.Question)
	if err != nil {
		return err
	}

	metrics.ChatAnswersTotal.WithLabelValues(string(answer.Type)).Inc()
	if answer.Answer == service.FallbackAnswer {
		metrics.ChatFallbacksTotal.Inc()
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer: answer.Answer,
		Source: answer.Source,
		Type:   string(answer.Type),
	})
}
