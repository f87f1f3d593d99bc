// Package notify delivers user-visible success and error messages. Sinks are
// fire-and-forget: a failing sink never fails the operation that notified.
package notify

import (
	"context"
	"time"
)

// Level is the severity shown to the shopper.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is one message for one shopper.
type Notification struct {
	UserID  string    `json:"userId,omitempty"`
	Level   Level     `json:"level"`
	Kind    string    `json:"kind,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to every sink.
type Multi []Sink

// Notify implements Sink.
func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}

// Discard drops every notification.
type Discard struct{}

// Notify implements Sink.
func (Discard) Notify(context.Context, Notification) {}
