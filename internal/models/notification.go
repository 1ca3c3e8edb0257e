package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelPush     NotificationChannel = "push"
)

type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationSent      NotificationStatus = "sent"
	NotificationFailed    NotificationStatus = "failed"
)

// Notification is a message waiting for, or done with, delivery.
// sent and failed are terminal.
type Notification struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	SalonID       uuid.UUID           `db:"salon_id" json:"salon_id"`
	ClientID      *uuid.UUID          `db:"client_id" json:"client_id,omitempty"`
	AppointmentID *uuid.UUID          `db:"appointment_id" json:"appointment_id,omitempty"`
	Type          string              `db:"type" json:"type"`
	Channel       NotificationChannel `db:"channel" json:"channel"`
	Title         *string             `db:"title" json:"title,omitempty"`
	Message       string              `db:"message" json:"message"`
	Phone         *string             `db:"phone" json:"phone,omitempty"`
	Status        NotificationStatus  `db:"status" json:"status"`
	ScheduledFor  *time.Time          `db:"scheduled_for" json:"scheduled_for,omitempty"`
	SentAt        *time.Time          `db:"sent_at" json:"sent_at,omitempty"`
	ErrorMessage  *string             `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
}

// HasPhone reports whether a non-blank phone is set.
func (n *Notification) HasPhone() bool {
	return n.Phone != nil && strings.TrimSpace(*n.Phone) != ""
}
