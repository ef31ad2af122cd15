package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"flow_navigator/domain/interfaces"
)

const defaultOpenAIModel = "gpt-4o"

type OpenAIClient struct {
	client   *openai.Client
	settings Settings
	logger   *logrus.Logger
}

// NewOpenAIClient - creates new OpenAI-compatible chat completion oracle
func NewOpenAIClient(settings Settings, logger *logrus.Logger) (*OpenAIClient, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingAPIKey)
	}
	if settings.Model == "" {
		settings.Model = defaultOpenAIModel
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

	client := openai.NewClient(opts...)
	return &OpenAIClient{
		client:   &client,
		settings: settings,
		logger:   logger,
	}, nil
}

// Query - sends one system + user exchange and returns the reply text
func (c *OpenAIClient) Query(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.settings.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.settings.Temperature),
	}
	if c.settings.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.settings.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	c.logger.WithFields(logrus.Fields{
		"provider":          ProviderOpenAI,
		"model":             c.settings.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("Oracle replied")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ interfaces.Oracle = (*OpenAIClient)(nil)
