package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// httpChannel posts JSON payloads through a per-channel circuit breaker.
type httpChannel struct {
	name    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func newHTTPChannel(name string, timeout time.Duration, logger *zap.Logger) httpChannel {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger = logger.With(zap.String("component", "notify"), zap.String("channel", name))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Notification circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return httpChannel{
		name:    name,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// postJSON returns the response body of a 2xx reply.
func (c httpChannel) postJSON(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, endpoint, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s delivery suspended: %w", c.name, err)
	}
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}

func (c httpChannel) post(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// the URL may carry credentials, keep it out of the error
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Received response",
		zap.Int("status_code", resp.StatusCode),
		zap.Int("body_size", len(respBody)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return nil, fmt.Errorf("%s returned status %d: %s", c.name, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
