package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/api/metrics"
	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// ChatHandler handles POST /v1/chat.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages" validate:"min=1"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send forwards the conversation to the composer: context retrieval, system
// prompt injection, then the completion call.
func (h *ChatHandler) Send(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	reply, err := h.service.SendMessage(c.Request().Context(), userID, req.Messages)
	metrics.ChatRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}
