package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

const maxRequestBodySize = int64(65536)

// WebhookProcessor handles a parsed provider notification.
type WebhookProcessor interface {
	HandleNotification(ctx context.Context, n services.WebhookNotification) (services.Outcome, error)
}

// WebhookHandler receives Mercado Pago notifications.
type WebhookHandler struct {
	service WebhookProcessor
	log     *logger.Logger
}

func NewWebhookHandler(service WebhookProcessor, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

type webhookBody struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID mercadopago.ID `json:"id"`
	} `json:"data"`
}

// HandleMercadoPago accepts both the JSON body form and the legacy
// query-string form (?topic=...&id=...). It answers 200 for anything it
// chooses to ignore so the provider stops retrying.
func (h *WebhookHandler) HandleMercadoPago(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodySize)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warnw("Failed to read webhook request body", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "cannot read request body"}, http.StatusBadRequest)
		c.Abort()
		return
	}

	var body webhookBody
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, &body); err != nil {
			h.log.Warnw("Malformed webhook body", "error", err)
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: "malformed JSON body"}, http.StatusBadRequest)
			c.Abort()
			return
		}
	}

	n := services.WebhookNotification{
		Type:   firstNonEmpty(body.Type, c.Query("type"), c.Query("topic")),
		Action: body.Action,
		DataID: firstNonEmpty(body.Data.ID.String(), c.Query("data.id"), c.Query("id")),
	}
	h.log.Infow("Received Mercado Pago webhook", "type", n.Type, "action", n.Action, "dataID", n.DataID)

	outcome, err := h.service.HandleNotification(c.Request.Context(), n)
	if err != nil {
		h.log.Errorw("Error processing webhook", "error", err, "type", n.Type, "dataID", n.DataID)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "internal server error processing webhook"}, http.StatusInternalServerError)
		c.Abort()
		return
	}

	h.log.Debugw("Webhook processed", "type", n.Type, "dataID", n.DataID, "outcome", outcome)
	res.JsonResponse(c.Writer, res.SuccessResponse{Success: true}, http.StatusOK)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
