package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"flow_navigator/domain/interfaces"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiClient struct {
	client   *genai.Client
	settings Settings
	logger   *logrus.Logger
}

// NewGeminiClient - creates new Gemini API oracle
func NewGeminiClient(ctx context.Context, settings Settings, logger *logrus.Logger) (*GeminiClient, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is not set", ErrMissingAPIKey)
	}
	if settings.Model == "" {
		settings.Model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  settings.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:   client,
		settings: settings,
		logger:   logger,
	}, nil
}

// Query - generates content with the system prompt as system instruction
func (c *GeminiClient) Query(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](float32(c.settings.Temperature)),
	}
	if c.settings.MaxTokens > 0 {
		config.MaxOutputTokens = int32(c.settings.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.settings.Model, genai.Text(userPrompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(logrus.Fields{
		"provider": ProviderGemini,
		"model":    c.settings.Model,
	}).Debug("Oracle replied")

	return text, nil
}

var _ interfaces.Oracle = (*GeminiClient)(nil)
