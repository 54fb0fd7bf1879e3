// Package events publishes investigation notifications for downstream
// consumers such as case management.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/telhawk-systems/telhawk-copilot/common/messaging"
)

// InvestigationEvent summarizes one completed investigation.
type InvestigationEvent struct {
	ID              string    `json:"id"`
	Time            time.Time `json:"time"`
	RuleDescription string    `json:"rule_description"`
	RuleLevel       *float64  `json:"rule_level,omitempty"`
	Category        string    `json:"category"`
	IP              string    `json:"ip,omitempty"`
	IPSource        string    `json:"ip_source,omitempty"`
	User            string    `json:"user,omitempty"`
	RelatedLogCount int       `json:"related_log_count"`
	AbuseScore      *int      `json:"abuse_score,omitempty"`
	AnalysisStatus  string    `json:"analysis_status"`
	PlaybookStatus  string    `json:"playbook_status"`
	RequestID       string    `json:"request_id,omitempty"`
}

// Publisher sends investigation events to one subject.
type Publisher struct {
	pub     messaging.Publisher
	subject string
}

// NewPublisher creates a Publisher. An empty subject uses the default.
func NewPublisher(pub messaging.Publisher, subject string) *Publisher {
	if subject == "" {
		subject = messaging.SubjectInvestigationsCompleted
	}
	return &Publisher{pub: pub, subject: subject}
}

// Subject returns the subject events are published to.
func (p *Publisher) Subject() string {
	return p.subject
}

// PublishInvestigationCompleted fills in the ID and time when unset and
// publishes the event as JSON.
func (p *Publisher) PublishInvestigationCompleted(ctx context.Context, event *InvestigationEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	msg, err := messaging.NewJSONMessage(p.subject, event,
		messaging.WithHeader(messaging.HeaderRequestID, event.RequestID))
	if err != nil {
		return err
	}
	return p.pub.PublishMsg(ctx, msg)
}
