package openai

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// AnswerCache serves previously generated answers keyed by request content,
// letting repeated prompts skip the network entirely.
type AnswerCache interface {
	Fetch(key string) (string, bool)
	Store(key, answer string)
}

// ExchangeRecorder persists prompt/answer pairs after successful calls.
type ExchangeRecorder interface {
	RecordExchange(model, prompt, answer string) error
}

// ClientConfig configures a Client. Zero values fall back to defaults;
// only APIKey is required.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	Headers    map[string]string
	HTTPClient *http.Client

	// Cache and Recorder are optional collaborators; nil disables them.
	Cache    AnswerCache
	Recorder ExchangeRecorder
}

// Client talks to an OpenAI-compatible inference API over HTTPS. It is safe
// for concurrent use; every call builds a fresh request and shares only the
// underlying HTTP client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	headers    map[string]string
	exec       *Executor
	cache      AnswerCache
	recorder   ExchangeRecorder
}

// NewClient validates cfg and builds a Client with defaults applied.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    sanitizeBaseURL(cfg.BaseURL),
		model:      strings.TrimSpace(cfg.Model),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		exec:       NewExecutor(cfg.HTTPClient),
		cache:      cfg.Cache,
		recorder:   cfg.Recorder,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxRetries < 1 {
		c.maxRetries = defaultMaxRetries
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}

	c.headers = map[string]string{
		"Authorization": "Bearer " + apiKey,
		"Content-Type":  "application/json",
		"User-Agent":    userAgent,
	}
	for k, v := range cfg.Headers {
		if strings.TrimSpace(k) == "" || v == "" {
			continue
		}
		c.headers[k] = v
	}
	return c, nil
}

// Model returns the client's default model identifier.
func (c *Client) Model() string { return c.model }

// WithPolicy returns a copy of the client using a different per-call
// timeout and retry policy. Zero values keep the current setting.
func (c *Client) WithPolicy(timeout time.Duration, maxRetries int, baseDelay time.Duration) *Client {
	clone := *c
	if timeout > 0 {
		clone.timeout = timeout
	}
	if maxRetries > 0 {
		clone.maxRetries = maxRetries
	}
	if baseDelay > 0 {
		clone.baseDelay = baseDelay
	}
	return &clone
}

func sanitizeBaseURL(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return defaultBaseURL
	}
	return trimmed
}

// cacheKey derives a stable key from the full request payload so that any
// parameter change misses the cache.
func cacheKey(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
