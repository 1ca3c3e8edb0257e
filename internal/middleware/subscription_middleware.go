package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

// RequireActiveSubscription blocks salons whose subscription does not grant
// access. It needs the salon from RequireAuth; service tokens pass through.
func RequireActiveSubscription(subs *services.SubscriptionService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(ContextScopeKey)) == ScopeService {
			c.Next()
			return
		}

		salonID, ok := SalonFromContext(c)
		if !ok {
			res.JsonResponse(c.Writer, res.ErrorResponse{Error: "token is not bound to a salon"}, http.StatusForbidden)
			c.Abort()
			return
		}

		report, err := subs.Status(c.Request.Context(), salonID)
		if err != nil {
			res.JsonErrorResponse(c.Writer, res.ErrorResponse{Error: "failed to check subscription"}, http.StatusInternalServerError, log)
			c.Abort()
			return
		}

		if !report.Access.Allowed {
			log.Infow("Access denied by subscription", "salonID", salonID, "view", report.Access.View)
			res.JsonResponse(c.Writer, res.ErrorResponse{
				Error:     "subscription required",
				ErrorCode: http.StatusPaymentRequired,
				Details:   report.Access,
			}, http.StatusPaymentRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}
