package threatintel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-copilot/internal/config"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ThreatIntelConfig{APIKey: "test-key", BaseURL: server.URL})
}

func TestCheck_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		assert.Equal(t, "185.220.101.4", r.URL.Query().Get("ipAddress"))
		assert.Equal(t, "90", r.URL.Query().Get("maxAgeInDays"))
		assert.Equal(t, "test-key", r.Header.Get("Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ipAddress":"185.220.101.4","abuseConfidenceScore":100,"countryCode":"DE","isTor":true,"totalReports":412}}`))
	})

	rec, err := client.Check(context.Background(), "185.220.101.4")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "185.220.101.4", rec.IPAddress)
	assert.Equal(t, 100, rec.AbuseConfidenceScore)
	assert.Equal(t, "DE", rec.CountryCode)
	assert.True(t, rec.IsTor)
	assert.Equal(t, 412, rec.TotalReports)
}

func TestCheck_KeepsProviderFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ipAddress":"1.2.3.4","abuseConfidenceScore":42,"countryCode":"US",` +
			`"reports":[{"reportedAt":"2024-05-01T10:00:00+00:00","categories":[18,22]}]}}`))
	})

	rec, err := client.Check(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 42, rec.AbuseConfidenceScore)

	out, err := json.Marshal(models.InvestigateResponse{ThreatIntel: rec})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"reports":[{"reportedAt":"2024-05-01T10:00:00+00:00","categories":[18,22]}]`)
}

func TestCheck_NonOKStatus(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"errors":[{"detail":"nope"}]}`))
		})

		rec, err := client.Check(context.Background(), "1.2.3.4")
		assert.Nil(t, rec)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, status, statusErr.StatusCode)
	}
}

func TestCheck_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(config.ThreatIntelConfig{APIKey: "k", BaseURL: server.URL})
	rec, err := client.Check(context.Background(), "1.2.3.4")
	assert.Nil(t, rec)
	assert.Error(t, err)
}

func TestCheck_MissingData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	rec, err := client.Check(context.Background(), "1.2.3.4")
	assert.Nil(t, rec)
	assert.Error(t, err)
}

func TestCheck_EmptyIPMakesNoRequest(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	rec, err := client.Check(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.False(t, called)
}

func TestCheck_Disabled(t *testing.T) {
	for _, key := range []string{"", "YOUR_KEY_HERE", "YOUR_ABUSEIPDB_KEY"} {
		client := NewClient(config.ThreatIntelConfig{APIKey: key})
		assert.False(t, client.IsEnabled())

		rec, err := client.Check(context.Background(), "1.2.3.4")
		assert.Nil(t, rec)
		assert.ErrorIs(t, err, ErrDisabled)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(config.ThreatIntelConfig{APIKey: "k"})
	assert.Equal(t, "https://api.abuseipdb.com/api/v2", c.baseURL)
	assert.Equal(t, DefaultMaxAgeDays, c.maxAgeDays)
	assert.True(t, c.IsEnabled())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "No Threat Intelligence data available.", Summary(nil))

	got := Summary(&models.ThreatRecord{IPAddress: "1.2.3.4", AbuseConfidenceScore: 87, CountryCode: "CN"})
	assert.Equal(t, "**Threat Intelligence:**\n- IP: 1.2.3.4\n- Score: 87%\n- Country: CN", got)
}
