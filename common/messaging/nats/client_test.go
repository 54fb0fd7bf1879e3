package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/telhawk-systems/telhawk-copilot/common/messaging"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.URL)
	assert.Equal(t, "telhawk-copilot", cfg.Name)
	assert.Equal(t, -1, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)
}

func TestToNATS(t *testing.T) {
	msg := messaging.NewMessage(messaging.SubjectInvestigationsCompleted, []byte(`{}`),
		messaging.WithHeader(messaging.HeaderRequestID, "req-1"))

	m := toNATS(msg)

	assert.Equal(t, msg.Subject, m.Subject)
	assert.Equal(t, msg.Data, m.Data)
	assert.Equal(t, "req-1", m.Header.Get(messaging.HeaderRequestID))
	assert.Equal(t, "application/json", m.Header.Get(messaging.HeaderContentType))
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.MaxReconnects = 0
	cfg.Timeout = 200 * time.Millisecond

	_, err := NewClient(cfg, nil)
	assert.ErrorContains(t, err, "connect to NATS at nats://127.0.0.1:1")
}
