package services

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrProvider             = errors.New("payment provider error")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
