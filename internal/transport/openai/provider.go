package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/burner/internal/domain"
	"github.com/kailas-cloud/burner/internal/metrics"
)

// Provider is a chat model provider over an OpenAI-compatible API.
type Provider struct {
	client  *openai.Client
	allowed map[string]struct{}
	logger  *zap.Logger
}

// Config holds the model provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Models restricts which model ids are offered; empty means all listed models.
	Models []string
	// Timeout bounds a whole model call, stream included. 0 = no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewProvider creates an OpenAI-compatible model provider.
func NewProvider(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	var allowed map[string]struct{}
	if len(cfg.Models) > 0 {
		allowed = make(map[string]struct{}, len(cfg.Models))
		for _, m := range cfg.Models {
			allowed[m] = struct{}{}
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:  openai.NewClientWithConfig(clientCfg),
		allowed: allowed,
		logger:  logger,
	}
}

// ListModels returns the available chat models in the order the API reports them.
// Embedding, audio, image and moderation models are skipped.
// A non-empty filter keeps only the model with that exact id.
func (p *Provider) ListModels(ctx context.Context, filter string) ([]domain.Model, error) {
	list, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, parseAPIError("list models", err)
	}

	models := make([]domain.Model, 0, len(list.Models))
	for _, m := range list.Models {
		if !isChatModel(m.ID) {
			continue
		}
		if p.allowed != nil {
			if _, ok := p.allowed[m.ID]; !ok {
				continue
			}
		}
		if filter != "" && m.ID != filter {
			continue
		}
		models = append(models, domain.Model{ID: m.ID, DisplayName: displayName(m)})
	}
	return models, nil
}

// Send starts a streamed chat completion with a single user message.
func (p *Provider) Send(ctx context.Context, modelID, prompt string) (domain.ChatStream, error) {
	start := time.Now()

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: true,
	})
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues(modelID, "error").Inc()
		return nil, parseAPIError("chat completion", err)
	}

	return &chatStream{stream: stream, model: modelID, start: start}, nil
}

// HealthCheck verifies API availability via ListModels.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// chatStream adapts openai.ChatCompletionStream to domain.ChatStream.
type chatStream struct {
	stream *openai.ChatCompletionStream
	model  string
	start  time.Time
	failed bool
	done   bool
}

// Recv returns the text carried by the next chunk. Chunks without content yield "".
func (s *chatStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if errors.Is(err, io.EOF) {
		s.done = true
		return "", io.EOF
	}
	if err != nil {
		s.failed = true
		return "", parseAPIError("chat stream", err)
	}

	metrics.ChatChunksTotal.WithLabelValues(s.model).Inc()

	var b strings.Builder
	for _, c := range resp.Choices {
		b.WriteString(c.Delta.Content)
	}
	return b.String(), nil
}

// Close releases the HTTP stream and records the request outcome.
func (s *chatStream) Close() error {
	status := "success"
	if s.failed || !s.done {
		status = "error"
	}
	metrics.ChatRequestsTotal.WithLabelValues(s.model, status).Inc()
	metrics.ChatRequestDuration.WithLabelValues(s.model).Observe(time.Since(s.start).Seconds())

	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("close chat stream: %w", err)
	}
	return nil
}

// nonChatFamilies are id fragments of model families that reject chat completions.
var nonChatFamilies = []string{"embed", "whisper", "tts", "dall-e", "moderation", "transcribe"}

func isChatModel(id string) bool {
	id = strings.ToLower(id)
	for _, f := range nonChatFamilies {
		if strings.Contains(id, f) {
			return false
		}
	}
	return true
}

func displayName(m openai.Model) string {
	if m.OwnedBy == "" {
		return m.ID
	}
	return fmt.Sprintf("%s (%s)", m.ID, m.OwnedBy)
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderError.
func parseAPIError(op string, err error) error {
	wrap := domain.ErrProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = strings.TrimSpace(string(reqErr.Body))
		}
		return fmt.Errorf("%s: API error %d: %s: %w", op, reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, err, wrap)
	}

	return fmt.Errorf("%s failed: %v: %w", op, err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
