package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/middleware"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/req"
	"github.com/syshair/backend/pkg/res"
)

type PushRegistrar interface {
	Register(ctx context.Context, reg services.PushRegistration) (*models.PushSubscription, error)
}

type PushHandler struct {
	service PushRegistrar
	log     *logger.Logger
}

func NewPushHandler(service PushRegistrar, log *logger.Logger) *PushHandler {
	return &PushHandler{service: service, log: log}
}

func (h *PushHandler) Register(c *gin.Context) {
	body, err := req.HandleBody[services.PushRegistration](c.Writer, c.Request, h.log)
	if err != nil {
		return
	}
	if !middleware.CanAccessSalon(c, body.SalonID) {
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "forbidden"}, http.StatusForbidden)
		return
	}

	sub, err := h.service.Register(c.Request.Context(), *body)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: err.Error()}, http.StatusBadRequest)
			return
		}
		res.JsonErrorResponse(c.Writer, res.ErrorResponse{Error: "failed to register push subscription"}, http.StatusInternalServerError, h.log)
		return
	}
	res.JsonResponse(c.Writer, sub, http.StatusCreated)
}
