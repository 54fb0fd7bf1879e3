package correlation

import (
	"context"

	"github.com/telhawk-systems/telhawk-copilot/common/logging"
	"github.com/telhawk-systems/telhawk-copilot/internal/logsource"
	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// Result is an alert's extracted tokens plus the log lines that mention them.
type Result struct {
	Extraction
	RelatedLogs []string
}

// Engine correlates alerts against a log source.
type Engine struct {
	logs      logsource.Source
	ipChain   Chain
	userChain Chain
	logger    *logging.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithIPChain replaces the IP extractors.
func WithIPChain(c Chain) Option {
	return func(e *Engine) { e.ipChain = c }
}

// WithUserChain replaces the user extractors.
func WithUserChain(c Chain) Option {
	return func(e *Engine) { e.userChain = c }
}

// NewEngine creates an Engine over logs.
func NewEngine(logs logsource.Source, logger *logging.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		logs:      logs,
		ipChain:   DefaultIPChain(),
		userChain: DefaultUserChain(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Correlate extracts tokens and gathers related lines. A log source failure
// is logged and never returned; whatever lines the source matched before
// failing are kept.
func (e *Engine) Correlate(ctx context.Context, doc models.Document) Result {
	ex := extractWith(e.ipChain, e.userChain, doc)

	if ex.IPSource != "" {
		e.logger.DebugContext(ctx, "extracted ip", logging.IP(ex.IP), logging.Extractor(ex.IPSource))
	}

	res := Result{Extraction: ex}
	keys := ex.Keys()
	if len(keys) == 0 || e.logs == nil {
		return res
	}

	lines, err := e.logs.Related(ctx, keys)
	if err != nil {
		e.logger.WarnContext(ctx, "log correlation incomplete", logging.Error(err), logging.Count(len(lines)))
	}
	res.RelatedLogs = lines
	return res
}
