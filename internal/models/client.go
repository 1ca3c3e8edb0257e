package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a salon customer.
type Client struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SalonID   uuid.UUID `db:"salon_id" json:"salon_id"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FirstName returns the first word of the client's name.
func (c *Client) FirstName() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// HasPhone reports whether a non-blank phone is set.
func (c *Client) HasPhone() bool {
	return c.Phone != nil && strings.TrimSpace(*c.Phone) != ""
}
