// Package narrative produces analyst-facing text from a chat-completion model:
// alert analysis, response playbooks and free-form answers.
package narrative

// Status tags how an Outcome was produced.
type Status string

const (
	// StatusOK means Text is the model's answer.
	StatusOK Status = "ok"
	// StatusUnavailable means no completion client is configured.
	StatusUnavailable Status = "unavailable"
	// StatusError means the completion call failed; Text holds the message.
	StatusError Status = "error"
)

// NotConfiguredText is returned in place of an answer when no key is set.
const NotConfiguredText = "Groq client not configured."

// Outcome is the tagged result of one generation. Text always carries what
// the dashboard displays, so a failure never breaks the page.
type Outcome struct {
	Status Status
	Text   string
	Err    error
}

// OK reports whether Text came from the model.
func (o Outcome) OK() bool {
	return o.Status == StatusOK
}

func unavailable() Outcome {
	return Outcome{Status: StatusUnavailable, Text: NotConfiguredText}
}
