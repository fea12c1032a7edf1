package config

import (
	"fmt"

	"github.com/JaimeStill/folio/pkg/resilience"
)

var classifierResilienceEnv = &resilience.Env{
	MaxAttempts:    "FOLIO_CLASSIFIER_MAX_ATTEMPTS",
	BreakerEnabled: "FOLIO_CLASSIFIER_BREAKER_ENABLED",
}

// ClassifierConfig holds the retry and circuit breaker policy for grouping
// calls to the agent. It is independent of the OCR policy.
type ClassifierConfig struct {
	Resilience resilience.Config `toml:"resilience"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifierConfig) Finalize() error {
	if err := c.Resilience.Finalize(classifierResilienceEnv); err != nil {
		return fmt.Errorf("resilience: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifierConfig) Merge(overlay *ClassifierConfig) {
	c.Resilience.Merge(&overlay.Resilience)
}
