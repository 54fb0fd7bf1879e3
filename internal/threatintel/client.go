// Package threatintel looks up IP reputation on AbuseIPDB.
package threatintel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-copilot/internal/config"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// ProviderName labels AbuseIPDB in logs and metrics.
const ProviderName = "abuseipdb"

// DefaultMaxAgeDays is the reporting lookback window.
const DefaultMaxAgeDays = 90

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("threat intelligence not configured")

// StatusError is a non-200 answer from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("abuseipdb returned status %d: %s", e.StatusCode, e.Body)
}

// Client queries the AbuseIPDB check endpoint. Every call is a fresh request;
// nothing is cached.
type Client struct {
	apiKey     string
	baseURL    string
	maxAgeDays int
	httpClient *http.Client
}

// NewClient builds a client from configuration. A missing or placeholder key
// yields a disabled client rather than an error.
func NewClient(cfg config.ThreatIntelConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.abuseipdb.com/api/v2"
	}
	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = DefaultMaxAgeDays
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxAgeDays: maxAge,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// IsEnabled reports whether a usable API key is configured.
func (c *Client) IsEnabled() bool {
	return c != nil && config.HasCredential(c.apiKey)
}

// Check returns the reputation record for ip. An empty ip returns (nil, nil).
func (c *Client) Check(ctx context.Context, ip string) (*models.ThreatRecord, error) {
	if ip == "" {
		return nil, nil
	}
	if !c.IsEnabled() {
		return nil, ErrDisabled
	}

	params := url.Values{}
	params.Set("ipAddress", ip)
	params.Set("maxAgeInDays", strconv.Itoa(c.maxAgeDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/check?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("abuseipdb request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var envelope struct {
		Data *models.ThreatRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode abuseipdb response: %w", err)
	}
	if envelope.Data == nil {
		return nil, errors.New("abuseipdb response has no data object")
	}
	return envelope.Data, nil
}

// Summary renders the block handed to the analysis prompt.
func Summary(rec *models.ThreatRecord) string {
	if rec == nil {
		return "No Threat Intelligence data available."
	}
	return fmt.Sprintf("**Threat Intelligence:**\n- IP: %s\n- Score: %d%%\n- Country: %s",
		rec.IPAddress, rec.AbuseConfidenceScore, rec.CountryCode)
}
