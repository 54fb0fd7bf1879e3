package narrative

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultAnalysisPrompt = `You are a Tier 3 SOC Analyst. Analyze the alert, logs, and threat intelligence.
Format response in HTML (use <b>, <br>, <ul>).
Requirements:
1. **MITRE Mapping:** Identify Tactic & Technique ID (e.g. T1078).
2. **Summary:** Plain English explanation.
3. **Assessment:** True/False Positive?`

	defaultPlaybookPrompt = `You are an Incident Responder. Generate a dynamic playbook in HTML.
Steps: Detection, Containment, Eradication, Recovery.`

	defaultChatPrompt = `You are a Tier 3 Security Analyst Assistant.
Answer the user's question based ONLY on the provided Alert JSON and Logs.
Be concise and technical.`
)

// NoRelatedLogsText stands in for an empty related-log list.
const NoRelatedLogsText = "No related logs found."

// Prompts holds the system instructions for each operation.
type Prompts struct {
	Analysis string `yaml:"analysis"`
	Playbook string `yaml:"playbook"`
	Chat     string `yaml:"chat"`
	// Model overrides the configured model when set.
	Model string `yaml:"model"`
}

// DefaultPrompts returns the built-in instructions.
func DefaultPrompts() Prompts {
	return Prompts{
		Analysis: defaultAnalysisPrompt,
		Playbook: defaultPlaybookPrompt,
		Chat:     defaultChatPrompt,
	}
}

// LoadPrompts reads a YAML override file. Fields left empty keep the
// built-in text. An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	p := DefaultPrompts()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return p, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	if s := strings.TrimSpace(override.Analysis); s != "" {
		p.Analysis = s
	}
	if s := strings.TrimSpace(override.Playbook); s != "" {
		p.Playbook = s
	}
	if s := strings.TrimSpace(override.Chat); s != "" {
		p.Chat = s
	}
	p.Model = strings.TrimSpace(override.Model)
	return p, nil
}

// LogsText joins related lines, or returns NoRelatedLogsText.
func LogsText(lines []string) string {
	if len(lines) == 0 {
		return NoRelatedLogsText
	}
	return strings.Join(lines, "\n")
}

func analysisUserPrompt(alertJSON, threatSummary, logs string) string {
	return fmt.Sprintf("Alert: %s\n%s\nLogs: %s", alertJSON, threatSummary, logs)
}

func playbookUserPrompt(alertJSON, logs string) string {
	return fmt.Sprintf("Alert: %s\nLogs: %s", alertJSON, logs)
}

func chatUserPrompt(alertContext, logsContext, question string) string {
	return fmt.Sprintf("**Alert Context:** %s\n**Logs Context:** %s\n**User Question:** %s",
		alertContext, logsContext, question)
}
