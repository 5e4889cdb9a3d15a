package service

import (
	"context"
	"fmt"
	"strings"

	"finflow/internal/models"
	"finflow/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const (
	ProviderNone     = "none"
	ProviderGigaChat = "gigachat"
	ProviderGemini   = "gemini"
)

// NewClassifier builds the classifier named by cfg.Classifier.Provider. The returned close func
// is never nil.
func NewClassifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Classifier, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Classifier.Provider)) {
	case "", ProviderNone:
		logger.Info("External classifier disabled")
		return DisabledClassifier{}, noop, nil
	case ProviderGigaChat:
		c, err := NewGigaChatClassifier(ctx, &cfg.GigaChat, logger)
		if err != nil {
			return nil, noop, err
		}
		return c, c.Close, nil
	case ProviderGemini:
		c, err := NewGeminiClassifier(ctx, &cfg.Gemini, logger)
		if err != nil {
			return nil, noop, err
		}
		return c, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown classifier provider %q", cfg.Classifier.Provider)
	}
}

// GigaChatClassifier talks to GigaChat through gigago.
type GigaChatClassifier struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatClassifier(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is required for the gigachat classifier")
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = classifierSystemInstruction
	model.Temperature = 0.1

	logger.Info("Using GigaChat classifier", zap.String("model", cfg.Model))
	return &GigaChatClassifier{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *GigaChatClassifier) Name() string  { return ProviderGigaChat }
func (c *GigaChatClassifier) Enabled() bool { return true }

func (c *GigaChatClassifier) Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResult, error) {
	content, err := c.generate(ctx, buildClassificationPrompt(req))
	if err != nil {
		return nil, err
	}
	return parseClassification(content)
}

func (c *GigaChatClassifier) ExtractTransactions(ctx context.Context, text string) ([]models.ParsedTransaction, error) {
	text = strings.TrimSpace(text)
	if len(text) < 10 {
		c.logger.Warn("Extracted text is too short, skipping analysis", zap.Int("length", len(text)))
		return nil, nil
	}

	content, err := c.generate(ctx, buildExtractionPrompt(text))
	if err != nil {
		return nil, err
	}
	txs, err := parseExtractedTransactions(content)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Transaction extraction completed", zap.Int("count", len(txs)))
	return txs, nil
}

func (c *GigaChatClassifier) generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *GigaChatClassifier) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
