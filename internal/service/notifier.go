package service

import (
	"context"
	"fmt"
	"log"
)

// Notifier is the boundary to the SMS/push gateway. Delivery is
// best-effort; callers ignore returned errors.
type Notifier interface {
	Notify(ctx context.Context, recipientID, title, message string) error
}

// LogNotifier is a Notifier that writes notifications to the process log.
// Stands in for the real SMS gateway in development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, recipientID, title, message string) error {
	log.Printf("[NOTIFICATION] Recipient=%s, Title=%s, Message=%s", recipientID, title, message)
	return nil
}

// notifyFare formats a minor-unit amount for user-facing messages.
func notifyFare(amount int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(amount)/100, currency)
}
