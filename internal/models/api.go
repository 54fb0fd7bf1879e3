package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TopEntry is one description/count pair. It encodes as a two-element
// array, the shape the dashboard charts consume.
type TopEntry struct {
	Description string
	Count       int
}

// MarshalJSON encodes the entry as [description, count].
func (e TopEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Description, e.Count})
}

// UnmarshalJSON accepts the [description, count] form.
func (e *TopEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("top entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Description); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Count)
}

// TimeSeries is an hour-bucketed count series with parallel slices.
type TimeSeries struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// AlertsResponse is the body of GET /api/alerts.
type AlertsResponse struct {
	Alerts     []Alert    `json:"alerts"`
	Top5Alerts []TopEntry `json:"top_5_alerts"`
	TimeSeries TimeSeries `json:"time_series"`
}

// ThreatRecord is the AbuseIPDB check payload (the "data" object).
type ThreatRecord struct {
	IPAddress            string   `json:"ipAddress"`
	IsPublic             bool     `json:"isPublic"`
	IPVersion            int      `json:"ipVersion"`
	IsWhitelisted        *bool    `json:"isWhitelisted"`
	AbuseConfidenceScore int      `json:"abuseConfidenceScore"`
	CountryCode          string   `json:"countryCode"`
	UsageType            string   `json:"usageType"`
	ISP                  string   `json:"isp"`
	Domain               string   `json:"domain"`
	Hostnames            []string `json:"hostnames"`
	IsTor                bool     `json:"isTor"`
	TotalReports         int      `json:"totalReports"`
	NumDistinctUsers     int      `json:"numDistinctUsers"`
	LastReportedAt       *string  `json:"lastReportedAt"`

	// Raw is the provider's data object as received. When set it is what
	// gets encoded, so fields not listed above (reports, for one) reach the
	// dashboard unchanged.
	Raw json.RawMessage `json:"-"`
}

type threatRecordFields ThreatRecord

// UnmarshalJSON decodes the typed fields and keeps the original object.
func (r *ThreatRecord) UnmarshalJSON(data []byte) error {
	var f threatRecordFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = ThreatRecord(f)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes Raw when present, otherwise the typed fields.
func (r ThreatRecord) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	return json.Marshal(threatRecordFields(r))
}

// InvestigateResponse is the body of POST /api/investigate.
type InvestigateResponse struct {
	Analysis       string        `json:"analysis"`
	AnalysisStatus string        `json:"analysis_status"`
	Playbook       string        `json:"playbook"`
	PlaybookStatus string        `json:"playbook_status"`
	RelatedLogs    []string      `json:"related_logs"`
	ThreatIntel    *ThreatRecord `json:"threat_intel"`
}

// ContextText is caller-supplied chat context. The dashboard sends strings,
// but any JSON value is accepted and kept as its compact JSON text.
type ContextText string

// UnmarshalJSON implements json.Unmarshaler.
func (c *ContextText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*c = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = ContextText(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	*c = ContextText(buf.String())
	return nil
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question     string      `json:"question"`
	AlertContext ContextText `json:"alert_context"`
	LogsContext  ContextText `json:"logs_context"`
}

// ChatResponse is the body of POST /api/chat.
type ChatResponse struct {
	Answer string `json:"answer"`
	Status string `json:"status"`
}
