package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"unicode"

	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/pkg/logger"
)

// ChannelSender delivers a notification over one channel.
type ChannelSender interface {
	Channel() models.NotificationChannel
	Send(ctx context.Context, n models.Notification) error
}

var errMissingPhone = errors.New("missing phone")

// defaultCountryCode is prefixed to national numbers (Brazil).
const defaultCountryCode = "55"

// WhatsAppLink builds a wa.me click-to-chat link for phone and message.
func WhatsAppLink(phone, message string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return "", errMissingPhone
	}
	// national numbers carry a 2-digit area code and up to 9 digits
	if len(digits) <= 11 {
		digits = defaultCountryCode + digits
	}
	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message), nil
}

// WhatsAppSender prepares click-to-chat links. No delivery provider is
// wired, so a built link counts as sent.
type WhatsAppSender struct {
	log *logger.Logger
}

func NewWhatsAppSender(log *logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{log: log}
}

func (s *WhatsAppSender) Channel() models.NotificationChannel { return models.ChannelWhatsApp }

func (s *WhatsAppSender) Send(_ context.Context, n models.Notification) error {
	if !n.HasPhone() {
		return errMissingPhone
	}
	link, err := WhatsAppLink(*n.Phone, n.Message)
	if err != nil {
		return err
	}
	s.log.Infow("WhatsApp message prepared", "notificationID", n.ID, "link", link)
	return nil
}

// PushSender is a placeholder until a push provider is integrated.
type PushSender struct {
	log *logger.Logger
}

func NewPushSender(log *logger.Logger) *PushSender {
	return &PushSender{log: log}
}

func (s *PushSender) Channel() models.NotificationChannel { return models.ChannelPush }

func (s *PushSender) Send(_ context.Context, n models.Notification) error {
	s.log.Infow("Push notification accepted", "notificationID", n.ID, "salonID", n.SalonID)
	return nil
}
