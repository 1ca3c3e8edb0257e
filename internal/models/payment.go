package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Provider payment statuses the reconciliation reacts to.
const (
	ProviderPaymentApproved = "approved"
	ProviderPaymentRejected = "rejected"
)

// PaymentRecord is the append-only audit trail of provider payment events.
type PaymentRecord struct {
	ID                   uuid.UUID       `db:"id" json:"id"`
	SubscriptionID       uuid.UUID       `db:"subscription_id" json:"subscription_id"`
	ExternalPaymentID    string          `db:"external_payment_id" json:"external_payment_id"`
	ExternalStatus       string          `db:"external_status" json:"external_status"`
	ExternalStatusDetail string          `db:"external_status_detail" json:"external_status_detail"`
	Amount               decimal.Decimal `db:"amount" json:"amount"`
	Currency             string          `db:"currency" json:"currency"`
	PaymentMethod        string          `db:"payment_method" json:"payment_method"`
	PaidAt               *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"created_at"`
}
