// Package messaging is the broker-agnostic side of investigation
// notifications. Producers build a Message and hand it to a Publisher; the
// nats subpackage provides the only broker implementation.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Message is an outbound notification.
type Message struct {
	Subject string
	Data    []byte
	Header  map[string]string
	Time    time.Time
}

// Publisher delivers messages. Delivery is at most once.
type Publisher interface {
	PublishMsg(ctx context.Context, msg *Message) error
}

// PublishOption configures a Message before it is sent.
type PublishOption func(*Message)

// WithHeader sets a message header. Empty values are skipped.
func WithHeader(key, value string) PublishOption {
	return func(m *Message) {
		if value == "" {
			return
		}
		if m.Header == nil {
			m.Header = make(map[string]string)
		}
		m.Header[key] = value
	}
}

// NewMessage builds a Message for subject and applies opts.
func NewMessage(subject string, data []byte, opts ...PublishOption) *Message {
	m := &Message{
		Subject: subject,
		Data:    data,
		Time:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.setHeader(HeaderContentType, "application/json")
	return m
}

// NewJSONMessage marshals v as the message body.
func NewJSONMessage(subject string, v any, opts ...PublishOption) (*Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	return NewMessage(subject, data, opts...), nil
}

func (m *Message) setHeader(key, value string) {
	if _, ok := m.Header[key]; ok {
		return
	}
	WithHeader(key, value)(m)
}
