package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"flow_navigator/domain/interfaces"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

type AnthropicClient struct {
	client   anthropic.Client
	settings Settings
	logger   *logrus.Logger
}

// NewAnthropicClient - creates new Anthropic messages oracle
func NewAnthropicClient(settings Settings, logger *logrus.Logger) (*AnthropicClient, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", ErrMissingAPIKey)
	}
	if settings.Model == "" {
		settings.Model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(settings.APIKey),
		option.WithMaxRetries(2),
	}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	if settings.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(settings.Timeout))
	}

	return &AnthropicClient{
		client:   anthropic.NewClient(opts...),
		settings: settings,
		logger:   logger,
	}, nil
}

// Query - sends the prompts as a single-turn message and joins the text blocks of the reply
func (c *AnthropicClient) Query(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	maxTokens := int64(c.settings.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 8000
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.settings.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
		Temperature: anthropic.Float(c.settings.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(logrus.Fields{
		"provider":      ProviderAnthropic,
		"model":         c.settings.Model,
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	}).Debug("Oracle replied")

	return strings.TrimSpace(b.String()), nil
}

var _ interfaces.Oracle = (*AnthropicClient)(nil)
