// Package service ties the alert store, correlation, reputation lookups and
// narrative generation together behind the three dashboard operations.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/common/middleware"
	"github.com/telhawk-systems/telhawk-copilot/internal/aggregate"
	"github.com/telhawk-systems/telhawk-copilot/internal/alertstore"
	"github.com/telhawk-systems/telhawk-copilot/internal/correlation"
	"github.com/telhawk-systems/telhawk-copilot/internal/events"
	"github.com/telhawk-systems/telhawk-copilot/internal/metrics"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
	"github.com/telhawk-systems/telhawk-copilot/internal/narrative"
	"github.com/telhawk-systems/telhawk-copilot/internal/threatintel"
)

// NoQuestionText answers a chat request without a question.
const NoQuestionText = "Please ask a question."

// StatusNoQuestion tags the short-circuit chat answer.
const StatusNoQuestion = "no_question"

// ThreatIntel looks up IP reputation.
type ThreatIntel interface {
	IsEnabled() bool
	Check(ctx context.Context, ip string) (*models.ThreatRecord, error)
}

// Narrator generates analyst-facing text.
type Narrator interface {
	IsEnabled() bool
	Analysis(ctx context.Context, alertJSON, logs, threatSummary string) narrative.Outcome
	Playbook(ctx context.Context, alertJSON, logs string) narrative.Outcome
	Chat(ctx context.Context, question, alertContext, logsContext string) narrative.Outcome
}

// Notifier receives completed investigations.
type Notifier interface {
	PublishInvestigationCompleted(ctx context.Context, event *events.InvestigationEvent) error
}

// Service provides the copilot's business logic
type Service struct {
	store      alertstore.Reader
	correlator *correlation.Engine
	intel      ThreatIntel
	narrator   Narrator
	notifier   Notifier
	logger     *logging.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithNotifier publishes an event after every investigation.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service
func New(store alertstore.Reader, correlator *correlation.Engine, intel ThreatIntel, narrator Narrator, opts ...Option) *Service {
	s := &Service{
		store:      store,
		correlator: correlator,
		intel:      intel,
		narrator:   narrator,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreName identifies the alert store in error messages.
func (s *Service) StoreName() string {
	return s.store.Name()
}

// Alerts reads the store and builds the dashboard payload. Store errors are
// returned unchanged so callers can match alertstore.ErrNotFound and
// *alertstore.MalformedError.
func (s *Service) Alerts(ctx context.Context) (*models.AlertsResponse, error) {
	alerts, err := s.store.ReadAlerts(ctx)
	if err != nil {
		metrics.AlertStoreErrors.WithLabelValues(storeErrorReason(err)).Inc()
		return nil, err
	}
	metrics.AlertsInStore.Set(float64(len(alerts)))

	resp := aggregate.Summarize(alerts)
	return &resp, nil
}

func storeErrorReason(err error) string {
	var malformed *alertstore.MalformedError
	switch {
	case errors.Is(err, alertstore.ErrNotFound):
		return "not_found"
	case errors.As(err, &malformed):
		return "malformed"
	default:
		return "read"
	}
}

// Investigate correlates one alert, looks up its IP and asks for an analysis
// and a playbook. It never fails: every dependency degrades to placeholder text.
// Prompts carry the alert text as received.
func (s *Service) Investigate(ctx context.Context, doc models.Document) *models.InvestigateResponse {
	metrics.InvestigationsTotal.Inc()

	corr := s.correlator.Correlate(ctx, doc)
	metrics.RelatedLogLines.Observe(float64(len(corr.RelatedLogs)))

	threat := s.lookupThreat(ctx, corr.IP)

	alertJSON := doc.JSON()
	logs := narrative.LogsText(corr.RelatedLogs)

	analysis := s.generate(ctx, "analysis", func() narrative.Outcome {
		return s.narrator.Analysis(ctx, alertJSON, logs, threatintel.Summary(threat))
	})
	playbook := s.generate(ctx, "playbook", func() narrative.Outcome {
		return s.narrator.Playbook(ctx, alertJSON, logs)
	})

	related := corr.RelatedLogs
	if related == nil {
		related = []string{}
	}

	resp := &models.InvestigateResponse{
		Analysis:       analysis.Text,
		AnalysisStatus: string(analysis.Status),
		Playbook:       playbook.Text,
		PlaybookStatus: string(playbook.Status),
		RelatedLogs:    related,
		ThreatIntel:    threat,
	}

	s.notify(ctx, doc.Alert, corr, threat, resp)
	return resp
}

// Chat answers a question from the caller's context. The server does not
// recompute correlation for chat.
func (s *Service) Chat(ctx context.Context, req models.ChatRequest) models.ChatResponse {
	if req.Question == "" {
		metrics.ChatRequestsTotal.WithLabelValues(StatusNoQuestion).Inc()
		return models.ChatResponse{Answer: NoQuestionText, Status: StatusNoQuestion}
	}

	out := s.generate(ctx, "chat", func() narrative.Outcome {
		return s.narrator.Chat(ctx, req.Question, string(req.AlertContext), string(req.LogsContext))
	})
	metrics.ChatRequestsTotal.WithLabelValues(string(out.Status)).Inc()
	return models.ChatResponse{Answer: out.Text, Status: string(out.Status)}
}

// lookupThreat returns nil whenever no record is available.
func (s *Service) lookupThreat(ctx context.Context, ip string) *models.ThreatRecord {
	if ip == "" || s.intel == nil {
		return nil
	}
	if !s.intel.IsEnabled() {
		metrics.ProviderCallsTotal.WithLabelValues(threatintel.ProviderName, metrics.OutcomeDisabled).Inc()
		return nil
	}

	start := time.Now()
	rec, err := s.intel.Check(ctx, ip)
	metrics.ProviderCallDuration.WithLabelValues(threatintel.ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCallsTotal.WithLabelValues(threatintel.ProviderName, metrics.OutcomeError).Inc()
		s.logger.WarnContext(ctx, "threat intelligence unavailable",
			logging.Provider(threatintel.ProviderName), logging.IP(ip), logging.Error(err))
		return nil
	}
	metrics.ProviderCallsTotal.WithLabelValues(threatintel.ProviderName, metrics.OutcomeOK).Inc()
	return rec
}

func (s *Service) generate(ctx context.Context, op string, call func() narrative.Outcome) narrative.Outcome {
	if s.narrator == nil {
		return narrative.Outcome{Status: narrative.StatusUnavailable, Text: narrative.NotConfiguredText}
	}
	if !s.narrator.IsEnabled() {
		metrics.ProviderCallsTotal.WithLabelValues(narrative.ProviderName, metrics.OutcomeDisabled).Inc()
		return call()
	}

	start := time.Now()
	out := call()
	metrics.ProviderCallDuration.WithLabelValues(narrative.ProviderName).Observe(time.Since(start).Seconds())

	if out.Status == narrative.StatusError {
		metrics.ProviderCallsTotal.WithLabelValues(narrative.ProviderName, metrics.OutcomeError).Inc()
		s.logger.WarnContext(ctx, "narrative generation failed",
			logging.Provider(narrative.ProviderName), "operation", op, logging.Error(out.Err))
		return out
	}
	metrics.ProviderCallsTotal.WithLabelValues(narrative.ProviderName, metrics.OutcomeOK).Inc()
	return out
}

func (s *Service) notify(ctx context.Context, alert models.Alert, corr correlation.Result, threat *models.ThreatRecord, resp *models.InvestigateResponse) {
	if s.notifier == nil {
		return
	}

	event := &events.InvestigationEvent{
		RuleDescription: alert.Description(),
		Category:        string(aggregate.Categorize(alert)),
		IP:              corr.IP,
		IPSource:        corr.IPSource,
		User:            corr.User,
		RelatedLogCount: len(corr.RelatedLogs),
		AnalysisStatus:  resp.AnalysisStatus,
		PlaybookStatus:  resp.PlaybookStatus,
		RequestID:       middleware.GetRequestID(ctx),
	}
	if level, ok := alert.Level(); ok {
		event.RuleLevel = &level
	}
	if threat != nil {
		score := threat.AbuseConfidenceScore
		event.AbuseScore = &score
	}

	if err := s.notifier.PublishInvestigationCompleted(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "failed to publish investigation event", logging.Error(err))
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues("ok").Inc()
}
