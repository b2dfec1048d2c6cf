package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/pawmart/support-system/internal/api/metrics"
)

const systemPrompt = "You are a helpful assistant for a pet accessories store. " +
	"Answer briefly and only about pets, pet products, orders and shipping."

const defaultTimeout = 20 * time.Second

// completionClient is the slice of the OpenAI client the provider uses,
// extracted so tests can stub the upstream.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider implements ports.LLMProvider against the OpenAI chat
// completion API. Each call runs under an explicit timeout so a hung
// upstream cannot stall the request, and a secondary model is tried before
// giving up. Retrying the same model is deliberately not done.
type OpenAIProvider struct {
	client        completionClient
	model         string
	fallbackModel string
	timeout       time.Duration
	logger        zerolog.Logger
}

type Config struct {
	APIKey        string
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

func NewOpenAIProvider(cfg Config, logger zerolog.Logger) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIProvider{
		client:        openai.NewClient(cfg.APIKey),
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		timeout:       timeout,
		logger:        logger,
	}
}

// Generate produces an answer for the question. The knowledge context, when
// present, is prepended so the model can ground its answer. An error means
// every model in the chain failed; the caller owns the static fallback.
func (p *OpenAIProvider) Generate(ctx context.Context, question, knowledgeContext string) (string, error) {
	prompt := fmt.Sprintf("Context: %s\nUser: %s\nAI:", knowledgeContext, question)

	models := []string{p.model}
	if p.fallbackModel != "" && p.fallbackModel != p.model {
		models = append(models, p.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		text, err := p.complete(ctx, model, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if err == nil {
			err = fmt.Errorf("model %s returned an empty completion", model)
		}
		p.logger.Warn().Err(err).Str("model", model).Msg("llm completion failed")
		lastErr = err
	}
	return "", fmt.Errorf("llm generate: %w", lastErr)
}

func (p *OpenAIProvider) complete(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(model, outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices", model)
	}
	return resp.Choices[0].Message.Content, nil
}
