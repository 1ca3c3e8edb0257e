package mercadopago

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ID accepts both numeric and string identifiers. Payments use numbers,
// preapprovals use strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("mercadopago: invalid id %s: %w", string(b), err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// AutoRecurring is the billing plan attached to a preapproval.
type AutoRecurring struct {
	Frequency         int             `json:"frequency"`
	FrequencyType     string          `json:"frequency_type"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
}

// Preapproval is the provider's recurring payment authorization.
type Preapproval struct {
	ID                ID             `json:"id"`
	Status            string         `json:"status"`
	PayerID           ID             `json:"payer_id"`
	ExternalReference string         `json:"external_reference"`
	NextPaymentDate   *time.Time     `json:"next_payment_date"`
	AutoRecurring     *AutoRecurring `json:"auto_recurring"`
}

// Amount returns the recurring amount or zero.
func (p *Preapproval) Amount() decimal.Decimal {
	if p.AutoRecurring == nil {
		return decimal.Zero
	}
	return p.AutoRecurring.TransactionAmount
}

// Payment is a single charge, possibly generated by a preapproval.
type Payment struct {
	ID                 ID                  `json:"id"`
	Status             string              `json:"status"`
	StatusDetail       string              `json:"status_detail"`
	TransactionAmount  decimal.Decimal     `json:"transaction_amount"`
	CurrencyID         string              `json:"currency_id"`
	PaymentMethodID    string              `json:"payment_method_id"`
	DateApproved       *time.Time          `json:"date_approved"`
	ExternalReference  string              `json:"external_reference"`
	PreapprovalID      string              `json:"preapproval_id"`
	Metadata           map[string]any      `json:"metadata"`
	PointOfInteraction *PointOfInteraction `json:"point_of_interaction"`
}

// PointOfInteraction carries the subscription id for recurring charges.
type PointOfInteraction struct {
	TransactionData struct {
		SubscriptionID string `json:"subscription_id"`
	} `json:"transaction_data"`
}

// SubscriptionID returns the preapproval that generated the payment, if any.
func (p *Payment) SubscriptionID() string {
	if p.PreapprovalID != "" {
		return p.PreapprovalID
	}
	if v, ok := p.Metadata["preapproval_id"].(string); ok && v != "" {
		return v
	}
	if p.PointOfInteraction != nil {
		return p.PointOfInteraction.TransactionData.SubscriptionID
	}
	return ""
}
