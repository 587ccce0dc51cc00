// Package natsutil publishes JSON events over NATS with OpenTelemetry trace
// context carried in message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// Publisher is the part of *nats.Conn used here.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// headerCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish serializes v as JSON and publishes it to subject, injecting the
// trace context from ctx into the message headers.
func Publish[T any](ctx context.Context, p Publisher, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	if err := p.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Topic publishes values of one type to a fixed subject.
type Topic[T any] struct {
	pub     Publisher
	subject string
}

// NewTopic binds subject to p.
func NewTopic[T any](p Publisher, subject string) *Topic[T] {
	return &Topic[T]{pub: p, subject: subject}
}

// Publish sends v.
func (t *Topic[T]) Publish(ctx context.Context, v T) error {
	return Publish(ctx, t.pub, t.subject, v)
}

// Subject returns the subject t publishes to.
func (t *Topic[T]) Subject() string { return t.subject }
