package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalType string

const (
	GoalRevenue      GoalType = "revenue"
	GoalAppointments GoalType = "appointments"
	GoalNewClients   GoalType = "new_clients"
	GoalRating       GoalType = "rating"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalFailed    GoalStatus = "failed"
)

// Goal is a salon or professional target over a date window.
type Goal struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	SalonID        uuid.UUID       `db:"salon_id" json:"salon_id"`
	ProfessionalID *uuid.UUID      `db:"professional_id" json:"professional_id,omitempty"`
	Title          string          `db:"title" json:"title"`
	Type           GoalType        `db:"type" json:"type"`
	TargetValue    decimal.Decimal `db:"target_value" json:"target_value"`
	CurrentValue   decimal.Decimal `db:"current_value" json:"current_value"`
	StartDate      time.Time       `db:"start_date" json:"start_date"`
	EndDate        time.Time       `db:"end_date" json:"end_date"`
	Status         GoalStatus      `db:"status" json:"status"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// GoalWindow is the scope of an aggregation query.
type GoalWindow struct {
	SalonID        uuid.UUID
	ProfessionalID *uuid.UUID
	From           time.Time
	To             time.Time
}

// Window returns the aggregation scope of the goal.
func (g *Goal) Window() GoalWindow {
	return GoalWindow{
		SalonID:        g.SalonID,
		ProfessionalID: g.ProfessionalID,
		From:           g.StartDate,
		To:             g.EndDate,
	}
}
