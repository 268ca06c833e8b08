// Package mqtt declares how planning results leave the process. Subjects are
// relative names such as "plans/3" or "bids/12"; implementations map them to
// their own addressing.
package mqtt

import (
	"context"
	"errors"
)

// ErrPublish is returned when a message could not be delivered after retries.
var ErrPublish = errors.New("publish failed")

// Publisher sends JSON-encodable messages to subscribers of a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
	Close()
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close()                                     {}
