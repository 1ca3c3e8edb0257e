package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

// SubscriptionReader answers gating questions.
type SubscriptionReader interface {
	Status(ctx context.Context, salonID uuid.UUID) (*services.SubscriptionStatusReport, error)
	Recheck(ctx context.Context, salonID uuid.UUID) (*services.SubscriptionStatusReport, error)
}

type SubscriptionHandler struct {
	service SubscriptionReader
	log     *logger.Logger
}

func NewSubscriptionHandler(service SubscriptionReader, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// GetStatus returns the subscription row and the access decision.
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	h.respond(c, h.service.Status)
}

// Check re-reads the row, bypassing the cache.
func (h *SubscriptionHandler) Check(c *gin.Context) {
	h.respond(c, h.service.Recheck)
}

func (h *SubscriptionHandler) respond(c *gin.Context, load func(context.Context, uuid.UUID) (*services.SubscriptionStatusReport, error)) {
	salonID, ok := salonParam(c)
	if !ok {
		return
	}
	if !middleware.CanAccessSalon(c, salonID) {
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "forbidden"}, http.StatusForbidden)
		return
	}

	report, err := load(c.Request.Context(), salonID)
	if err != nil {
		res.JsonErrorResponse(c.Writer, res.ErrorResponse{Error: "failed to load subscription"}, http.StatusInternalServerError, h.log)
		return
	}
	res.JsonResponse(c.Writer, report, http.StatusOK)
}

func salonParam(c *gin.Context) (uuid.UUID, bool) {
	salonID, err := uuid.Parse(c.Param("salon_id"))
	if err != nil {
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "invalid salon_id"}, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return salonID, true
}
