package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/folio/pkg/resilience"
)

// AgentClassifier is a Classifier backed by a go-agents chat agent. Calls
// pass through the resilience executor under the "classifier.chat" operation.
type AgentClassifier struct {
	cfg  gaconfig.AgentConfig
	exec *resilience.Executor
}

// NewAgentClassifier creates an AgentClassifier. cfg is expected to be finalized.
func NewAgentClassifier(cfg gaconfig.AgentConfig, exec *resilience.Executor) *AgentClassifier {
	return &AgentClassifier{cfg: cfg, exec: exec}
}

// Classify sends prompt as a single chat turn and returns the response content.
func (c *AgentClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	var content string
	err = c.exec.Execute(ctx, "classifier.chat", func(ctx context.Context) error {
		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		content = resp.Content()
		return nil
	}, resilience.Transient)
	if err != nil {
		return "", err
	}

	return content, nil
}
