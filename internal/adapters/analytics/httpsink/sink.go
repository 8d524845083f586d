package httpsink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dog-registration/internal/domain/tracking"
	"dog-registration/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("analytics sink not configured")
	ErrUpstream      = errors.New("analytics upstream error")
)

type Config struct {
	URL    string
	APIKey string

	APIKeyHeader string
	Timeout      time.Duration
}

// Sink implementa tracking.Sink: un POST JSON por evento al endpoint de analytics.
type Sink struct {
	url          string
	apiKey       string
	apiKeyHeader string
	client       *httpclient.Client
}

func New(cfg Config, client *httpclient.Client) (*Sink, error) {
	u := strings.TrimSpace(cfg.URL)
	if u == "" {
		return nil, ErrNotConfigured
	}
	if err := httpclient.ValidateURL(u); err != nil {
		return nil, err
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	if client == nil {
		client = httpclient.New(cfg.Timeout, nil)
	}

	return &Sink{
		url:          u,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		client:       client,
	}, nil
}

// eventPayload es el contrato con el endpoint de analytics.
type eventPayload struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"sessionId"`
}

func (s *Sink) Send(ctx context.Context, e tracking.Event) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	headers := map[string]string{}
	if s.apiKey != "" {
		headers[s.apiKeyHeader] = s.apiKey
	}

	props := map[string]any(e.Properties)
	if props == nil {
		props = map[string]any{}
	}

	err := s.client.PostJSON(ctx, s.url, headers, eventPayload{
		Event:      string(e.Type),
		Properties: props,
		Timestamp:  e.Timestamp.UTC(),
		SessionID:  e.SessionID,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}
