// Package ai provides the planning oracle clients.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"flow_navigator/domain/interfaces"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var (
	ErrUnknownProvider = errors.New("unknown oracle provider")
	ErrMissingAPIKey   = errors.New("missing API key")
	ErrEmptyResponse   = errors.New("oracle returned an empty response")
)

// Settings configures an oracle client
type Settings struct {
	Provider          string
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// NormalizeProvider - maps provider aliases to their canonical name
func NormalizeProvider(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// NewOracle - builds the client for settings.Provider, rate limited when configured
func NewOracle(ctx context.Context, settings Settings, logger *logrus.Logger) (interfaces.Oracle, error) {
	provider, err := NormalizeProvider(settings.Provider)
	if err != nil {
		return nil, err
	}

	var oracle interfaces.Oracle
	switch provider {
	case ProviderOpenAI:
		oracle, err = NewOpenAIClient(settings, logger)
	case ProviderAnthropic:
		oracle, err = NewAnthropicClient(settings, logger)
	case ProviderGemini:
		oracle, err = NewGeminiClient(ctx, settings, logger)
	}
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"provider": provider,
		"model":    settings.Model,
	}).Info("Oracle client ready")

	return NewRateLimited(oracle, settings.RequestsPerMinute), nil
}
