package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/syshair/backend/internal/services"
	"github.com/syshair/backend/pkg/logger"
	"github.com/syshair/backend/pkg/res"
)

type DispatchRunner interface {
	Run(ctx context.Context) (services.DispatchSummary, error)
}

type GoalRecalculator interface {
	Recalculate(ctx context.Context) (services.GoalSummary, error)
}

// JobsHandler exposes manual triggers for the background jobs.
type JobsHandler struct {
	dispatch DispatchRunner
	goals    GoalRecalculator
	log      *logger.Logger
}

func NewJobsHandler(dispatch DispatchRunner, goals GoalRecalculator, log *logger.Logger) *JobsHandler {
	return &JobsHandler{dispatch: dispatch, goals: goals, log: log}
}

func (h *JobsHandler) DispatchNotifications(c *gin.Context) {
	summary, err := h.dispatch.Run(c.Request.Context())
	if err != nil {
		h.log.Errorw("Manual dispatch failed", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "dispatch failed"}, http.StatusInternalServerError)
		return
	}
	res.JsonResponse(c.Writer, summary, http.StatusOK)
}

func (h *JobsHandler) RecalculateGoals(c *gin.Context) {
	summary, err := h.goals.Recalculate(c.Request.Context())
	if err != nil {
		h.log.Errorw("Manual goal recalculation failed", "error", err)
		res.JsonResponse(c.Writer, res.ErrorResponse{Error: "goal recalculation failed"}, http.StatusInternalServerError)
		return
	}
	res.JsonResponse(c.Writer, summary, http.StatusOK)
}
