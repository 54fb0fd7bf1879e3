package narrative

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/telhawk-systems/telhawk-copilot/internal/config"
)

// ProviderName labels the completion backend in logs and metrics.
const ProviderName = "llm"

// ErrEmptyCompletion is returned when the backend answers with no choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer is the slice of the OpenAI client the generator needs.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator composes prompts and submits them to a Completer.
type Generator struct {
	client  Completer
	model   string
	prompts Prompts
}

// New builds a Generator from configuration. Without a usable API key the
// generator is disabled and every operation returns NotConfiguredText.
func New(cfg config.LLMConfig, prompts Prompts) *Generator {
	var client Completer
	if config.HasCredential(cfg.APIKey) {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(oc)
	}
	return NewWithClient(client, cfg.Model, prompts)
}

// NewWithClient wraps an existing Completer. A nil client disables the generator.
func NewWithClient(client Completer, model string, prompts Prompts) *Generator {
	if prompts.Model != "" {
		model = prompts.Model
	}
	return &Generator{client: client, model: model, prompts: prompts}
}

// IsEnabled reports whether a completion client is configured.
func (g *Generator) IsEnabled() bool {
	return g != nil && g.client != nil
}

// Model returns the model identifier sent with each request.
func (g *Generator) Model() string {
	return g.model
}

// Analysis asks for a MITRE mapping, summary and true/false-positive call.
// threatSummary is the rendered reputation block or its "no data" text.
func (g *Generator) Analysis(ctx context.Context, alertJSON, logs, threatSummary string) Outcome {
	return g.complete(ctx, g.prompts.Analysis, analysisUserPrompt(alertJSON, threatSummary, logs), false)
}

// Playbook asks for a Detection/Containment/Eradication/Recovery playbook.
func (g *Generator) Playbook(ctx context.Context, alertJSON, logs string) Outcome {
	return g.complete(ctx, g.prompts.Playbook, playbookUserPrompt(alertJSON, logs), false)
}

// Chat answers question from caller-supplied context only.
func (g *Generator) Chat(ctx context.Context, question, alertContext, logsContext string) Outcome {
	return g.complete(ctx, g.prompts.Chat, chatUserPrompt(alertContext, logsContext, question), true)
}

// complete runs one request. Failures become StatusError outcomes whose text
// is the error message, prefixed with "Error: " for chat answers.
func (g *Generator) complete(ctx context.Context, system, user string, prefixErr bool) Outcome {
	if !g.IsEnabled() {
		return unavailable()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err == nil && len(resp.Choices) == 0 {
		err = ErrEmptyCompletion
	}
	if err != nil {
		text := err.Error()
		if prefixErr {
			text = fmt.Sprintf("Error: %v", err)
		}
		return Outcome{Status: StatusError, Text: text, Err: err}
	}

	return Outcome{Status: StatusOK, Text: resp.Choices[0].Message.Content}
}
