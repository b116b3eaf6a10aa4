package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const maxErrorBody = 512

type transport struct {
	client  *http.Client
	logger  *slog.Logger
	timeout time.Duration
	headers map[string]string
}

// do sends body (when non-nil) as JSON and decodes a 2xx answer into out.
// The provider timeout is applied on top of ctx; deadline errors wrap
// ErrTimeout and non-2xx answers wrap ErrStatus.
func (t *transport) do(ctx context.Context, method, url string, body, out any) error {
	reqID := uuid.New().String()
	start := time.Now()

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var reader io.Reader
	size := 0
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			t.logger.Error("provider.http.encode_error", "req_id", reqID, "error", err)
			return fmt.Errorf("provider: encode request: %w", err)
		}
		reader = bytes.NewReader(bs)
		size = len(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("provider: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	t.logger.Debug("provider.http.request",
		"req_id", reqID,
		"method", method,
		"url", url,
		"content_length", size,
	)

	resp, err := t.client.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		t.logger.Debug("provider.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", elapsed.Milliseconds())
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: %s %s", ErrTimeout, elapsed.Round(time.Millisecond), method, url)
		}
		return fmt.Errorf("provider: %s %s: %w", method, url, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			t.logger.Warn("provider.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w reading response: %s %s", ErrTimeout, method, url)
		}
		return fmt.Errorf("provider: read response: %w", err)
	}

	t.logger.Debug("provider.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		snippet := raw
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return fmt.Errorf("%w %d from %s: %s", ErrStatus, resp.StatusCode, url, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("provider: decode response: %w", err)
	}
	return nil
}
