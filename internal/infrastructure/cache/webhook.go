package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"healthops/internal/domain"
)

// SecretHeader carries the shared secret of the revalidation endpoint.
const SecretHeader = "X-Revalidate-Secret"

// WebhookConfig configures the front-end revalidation endpoint.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
	// IncludeTags also forwards tag keys; by default only paths are sent.
	IncludeTags bool
}

// Webhook POSTs invalidated keys to the front-end so it re-renders
// cached pages.
type Webhook struct {
	cfg    WebhookConfig
	client *http.Client
}

type revalidateBody struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// NewWebhook creates a Webhook.
func NewWebhook(cfg WebhookConfig) *Webhook {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Webhook{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Invalidate implements domain.Invalidator.
func (w *Webhook) Invalidate(ctx context.Context, key domain.CacheKey) error {
	if key.Kind == domain.KindTag && !w.cfg.IncludeTags {
		return nil
	}

	body, err := json.Marshal(revalidateBody{Kind: string(key.Kind), Value: key.Value})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build revalidation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Secret != "" {
		req.Header.Set(SecretHeader, w.cfg.Secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("revalidate %s: %w", key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revalidate %s: unexpected status %d", key, resp.StatusCode)
	}
	return nil
}

var _ domain.Invalidator = (*Webhook)(nil)
