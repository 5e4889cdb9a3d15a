package service

import (
	"context"
	"fmt"
	"strings"

	"finflow/internal/models"
	"finflow/pkg/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClassifier uses the Gemini API through the genai SDK.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiClassifier(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini classifier")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger.Info("Using Gemini classifier", zap.String("model", cfg.Model))
	return &GeminiClassifier{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (c *GeminiClassifier) Name() string  { return ProviderGemini }
func (c *GeminiClassifier) Enabled() bool { return true }

func (c *GeminiClassifier) Classify(ctx context.Context, req ClassificationRequest) (*ClassificationResult, error) {
	content, err := c.generate(ctx, buildClassificationPrompt(req))
	if err != nil {
		return nil, err
	}
	return parseClassification(content)
}

func (c *GeminiClassifier) ExtractTransactions(ctx context.Context, text string) ([]models.ParsedTransaction, error) {
	if len(strings.TrimSpace(text)) < 10 {
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

func (c *GeminiClassifier) generate(ctx context.Context, prompt string) (string, error) {
	var temperature float32 = 0.1
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(classifierSystemInstruction, genai.RoleUser),
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
