// Package notify defines the digest delivery contract and its
// implementations.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Message is one rendered digest. HTML may be empty for plain-text digests.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers digests.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError is returned when the provider rejects a message. Messages
// holds the diagnostics the provider returned, if any.
type DeliveryError struct {
	StatusCode int
	Messages   []string
}

func (e *DeliveryError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("delivery failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("delivery failed with status %d: %s",
		e.StatusCode, strings.Join(e.Messages, "; "),
	)
}
