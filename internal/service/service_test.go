package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/common/middleware"
	"github.com/telhawk-systems/telhawk-copilot/internal/alertstore"
	"github.com/telhawk-systems/telhawk-copilot/internal/config"
	"github.com/telhawk-systems/telhawk-copilot/internal/correlation"
	"github.com/telhawk-systems/telhawk-copilot/internal/events"
	"github.com/telhawk-systems/telhawk-copilot/internal/logsource"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
	"github.com/telhawk-systems/telhawk-copilot/internal/narrative"
)

type fakeIntel struct {
	enabled bool
	rec     *models.ThreatRecord
	err     error
	ips     []string
}

func (f *fakeIntel) IsEnabled() bool { return f.enabled }

func (f *fakeIntel) Check(_ context.Context, ip string) (*models.ThreatRecord, error) {
	f.ips = append(f.ips, ip)
	return f.rec, f.err
}

type fakeNarrator struct {
	analysisIn []string
	playbookIn []string
	chatIn     []string
	out        narrative.Outcome
}

func (f *fakeNarrator) IsEnabled() bool { return true }

func (f *fakeNarrator) Analysis(_ context.Context, alertJSON, logs, threat string) narrative.Outcome {
	f.analysisIn = []string{alertJSON, logs, threat}
	return f.out
}

func (f *fakeNarrator) Playbook(_ context.Context, alertJSON, logs string) narrative.Outcome {
	f.playbookIn = []string{alertJSON, logs}
	return f.out
}

func (f *fakeNarrator) Chat(_ context.Context, q, a, l string) narrative.Outcome {
	f.chatIn = []string{q, a, l}
	return f.out
}

type fakeNotifier struct {
	events []*events.InvestigationEvent
	err    error
}

func (f *fakeNotifier) PublishInvestigationCompleted(_ context.Context, e *events.InvestigationEvent) error {
	f.events = append(f.events, e)
	return f.err
}

type fixture struct {
	dir      string
	intel    *fakeIntel
	narrator *fakeNarrator
	notifier *fakeNotifier
	svc      *Service
}

func newFixture(t *testing.T, alerts, logs string) *fixture {
	t.Helper()
	dir := t.TempDir()
	if alerts != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "alerts.txt"), []byte(alerts), 0o600))
	}
	if logs != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.txt"), []byte(logs), 0o600))
	}

	f := &fixture{
		dir:      dir,
		intel:    &fakeIntel{enabled: true},
		narrator: &fakeNarrator{out: narrative.Outcome{Status: narrative.StatusOK, Text: "<b>ok</b>"}},
		notifier: &fakeNotifier{},
	}
	engine := correlation.NewEngine(logsource.NewFileSource(filepath.Join(dir, "logs.txt")), logging.Discard())
	f.svc = New(alertstore.NewFileStore(filepath.Join(dir, "alerts.txt")), engine, f.intel, f.narrator,
		WithNotifier(f.notifier), WithLogger(logging.Discard()))
	return f
}

func decode(t *testing.T, raw string) models.Document {
	t.Helper()
	doc, err := models.ParseDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

func TestAlerts(t *testing.T) {
	f := newFixture(t, strings.Join([]string{
		`{"rule":{"level":10,"description":"A"},"timestamp":"2024-01-01T10:15:00Z"}`,
		``,
		`{"rule":{"level":5,"description":"B"},"timestamp":"2024-01-01T10:45:00Z"}`,
	}, "\n"), "")

	resp, err := f.svc.Alerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 2)
	assert.Equal(t, "High", resp.Alerts[0]["category"])
	assert.Equal(t, []string{"2024-01-01 10:00"}, resp.TimeSeries.Labels)
	assert.Equal(t, []int{2}, resp.TimeSeries.Data)
	assert.Equal(t, "alerts.txt", f.svc.StoreName())
}

func TestAlerts_NotFound(t *testing.T) {
	f := newFixture(t, "", "")

	_, err := f.svc.Alerts(context.Background())
	assert.True(t, errors.Is(err, alertstore.ErrNotFound))
}

func TestInvestigate(t *testing.T) {
	f := newFixture(t, "", "user bob logged in from 1.2.3.4\nunrelated line\n")
	f.intel.rec = &models.ThreatRecord{IPAddress: "1.2.3.4", AbuseConfidenceScore: 75, CountryCode: "US"}

	ctx := middleware.WithRequestID(context.Background(), "req-42")
	alert := decode(t, `{"rule":{"level":12,"description":"Logon failure"},"full_log":"failure from 1.2.3.4"}`)

	resp := f.svc.Investigate(ctx, alert)

	assert.Equal(t, "<b>ok</b>", resp.Analysis)
	assert.Equal(t, "ok", resp.AnalysisStatus)
	assert.Equal(t, "<b>ok</b>", resp.Playbook)
	assert.Equal(t, []string{"user bob logged in from 1.2.3.4"}, resp.RelatedLogs)
	require.NotNil(t, resp.ThreatIntel)
	assert.Equal(t, 75, resp.ThreatIntel.AbuseConfidenceScore)
	assert.Equal(t, []string{"1.2.3.4"}, f.intel.ips)

	require.Len(t, f.narrator.analysisIn, 3)
	assert.Equal(t, alert.Text, f.narrator.analysisIn[0])
	assert.Equal(t, "user bob logged in from 1.2.3.4", f.narrator.analysisIn[1])
	assert.Contains(t, f.narrator.analysisIn[2], "- Score: 75%")

	require.Len(t, f.notifier.events, 1)
	ev := f.notifier.events[0]
	assert.Equal(t, "Logon failure", ev.RuleDescription)
	assert.Equal(t, "High", ev.Category)
	assert.Equal(t, "1.2.3.4", ev.IP)
	assert.Equal(t, "pattern:ipv4", ev.IPSource)
	assert.Equal(t, 1, ev.RelatedLogCount)
	require.NotNil(t, ev.AbuseScore)
	assert.Equal(t, 75, *ev.AbuseScore)
	assert.Equal(t, "req-42", ev.RequestID)
}

func TestInvestigate_UsesReceivedKeyOrder(t *testing.T) {
	f := newFixture(t, "", "sshd: failed from 1.2.3.4\nagent 10.0.0.9 heartbeat\n")

	raw := `{"data":{"srcip":"1.2.3.4"},"agent":{"ip":"10.0.0.9"}}`
	resp := f.svc.Investigate(context.Background(), decode(t, raw))

	assert.Equal(t, []string{"1.2.3.4"}, f.intel.ips)
	assert.Equal(t, []string{"sshd: failed from 1.2.3.4"}, resp.RelatedLogs)
	assert.Equal(t, raw, f.narrator.analysisIn[0])
	assert.Equal(t, raw, f.narrator.playbookIn[0])
}

func TestInvestigate_Degrades(t *testing.T) {
	f := newFixture(t, "", "")
	f.intel.err = errors.New("status 429")
	f.narrator.out = narrative.Outcome{Status: narrative.StatusError, Text: "timeout", Err: errors.New("timeout")}
	f.notifier.err = errors.New("nats down")

	resp := f.svc.Investigate(context.Background(), decode(t, `{"msg":"from 10.0.0.1"}`))

	assert.Nil(t, resp.ThreatIntel)
	assert.NotNil(t, resp.RelatedLogs)
	assert.Empty(t, resp.RelatedLogs)
	assert.Equal(t, "timeout", resp.Analysis)
	assert.Equal(t, "error", resp.AnalysisStatus)
	assert.Equal(t, "error", resp.PlaybookStatus)
	assert.Equal(t, "No related logs found.", f.narrator.playbookIn[1])
	assert.Equal(t, "No Threat Intelligence data available.", f.narrator.analysisIn[2])
}

func TestInvestigate_NoIPSkipsLookup(t *testing.T) {
	f := newFixture(t, "", "")

	resp := f.svc.Investigate(context.Background(), decode(t, `{"rule":{"level":3}}`))
	assert.Empty(t, f.intel.ips)
	assert.Nil(t, resp.ThreatIntel)
}

func TestInvestigate_IntelDisabled(t *testing.T) {
	f := newFixture(t, "", "")
	f.intel.enabled = false

	f.svc.Investigate(context.Background(), decode(t, `{"msg":"10.0.0.1"}`))
	assert.Empty(t, f.intel.ips)
}

func TestInvestigate_UnconfiguredNarrator(t *testing.T) {
	gen := narrative.New(config.LLMConfig{APIKey: "YOUR_KEY_HERE"}, narrative.DefaultPrompts())
	engine := correlation.NewEngine(nil, logging.Discard())
	svc := New(alertstore.NewFileStore("unused"), engine, nil, gen, WithLogger(logging.Discard()))

	resp := svc.Investigate(context.Background(), decode(t, `{}`))
	assert.Equal(t, "Groq client not configured.", resp.Analysis)
	assert.Equal(t, "Groq client not configured.", resp.Playbook)
	assert.Equal(t, "unavailable", resp.AnalysisStatus)

	chat := svc.Chat(context.Background(), models.ChatRequest{Question: "why?"})
	assert.Equal(t, "Groq client not configured.", chat.Answer)
	assert.Equal(t, "unavailable", chat.Status)
}

func TestChat(t *testing.T) {
	f := newFixture(t, "", "")

	resp := f.svc.Chat(context.Background(), models.ChatRequest{
		Question:     "Who logged in?",
		AlertContext: `{"id":"1"}`,
		LogsContext:  "bob",
	})

	assert.Equal(t, "<b>ok</b>", resp.Answer)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"Who logged in?", `{"id":"1"}`, "bob"}, f.narrator.chatIn)
}

func TestChat_NoQuestion(t *testing.T) {
	f := newFixture(t, "", "")

	resp := f.svc.Chat(context.Background(), models.ChatRequest{AlertContext: "x"})
	assert.Equal(t, "Please ask a question.", resp.Answer)
	assert.Equal(t, StatusNoQuestion, resp.Status)
	assert.Nil(t, f.narrator.chatIn)
}
