package messaging

// Subject constants follow the pattern {domain}.{resource}.{action}.
const (
	// SubjectInvestigationsCompleted carries one event per finished investigation.
	SubjectInvestigationsCompleted = "copilot.investigations.completed"
)

// Header names set on published messages.
const (
	HeaderRequestID   = "X-Request-ID"
	HeaderContentType = "Content-Type"
)
