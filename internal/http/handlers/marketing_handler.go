package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/req"
	"github.com/syshair/backend/pkg/res"
)

type Broadcaster interface {
	Broadcast(ctx context.Context, r services.BroadcastRequest) (*services.BroadcastResult, error)
}

type MarketingHandler struct {
	service Broadcaster
	log     *logger.Logger
}

func NewMarketingHandler(service Broadcaster, log *logger.Logger) *MarketingHandler {
	return &MarketingHandler{service: service, log: log}
}

// Broadcast queues a marketing message for a list of clients.
func (h *MarketingHandler) Broadcast(c *gin.Context) {
	body, err := req.HandleBody[services.BroadcastRequest](c.Writer, c.Request, h.log)
	if err != nil {
		return
	}
	if !middleware.CanAccessSalon(c, body.SalonID) {
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "forbidden"}, http.StatusForbidden)
		return
	}

	result, err := h.service.Broadcast(c.Request.Context(), *body)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusBadRequest)
			return
		}
		h.log.Errorw("Marketing broadcast failed", "error", err, "salonID", body.SalonID)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "broadcast failed"}, http.StatusInternalServerError)
		return
	}
	res.JsonResponse(c.Writer, result, http.StatusOK)
}
