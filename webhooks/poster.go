package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-extensions/core"
)

// MessagePoster delivers action messages to an extension's message endpoint
// with the installation's bearer token.
type MessagePoster struct {
	httpClient HTTPDoer
	timeout    time.Duration
}

func NewMessagePoster(timeout time.Duration, client HTTPDoer) *MessagePoster {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &MessagePoster{httpClient: client, timeout: timeout}
}

func (p *MessagePoster) Post(ctx context.Context, req core.PostMessageRequest) error {
	if p == nil || p.httpClient == nil {
		return fmt.Errorf("webhooks: http client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(req.URL) == "" {
		return fmt.Errorf("%w: message url is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: bearer token is required", core.ErrInvalidRequest)
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("%w: encode message payload", core.ErrInvalidRequest)
	}

	requestCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build message request", core.ErrInvalidRequest)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Token)

	response, err := p.httpClient.Do(httpReq)
	if err != nil {
		if isTimeoutErr(err) {
			return fmt.Errorf("%w: message delivery timed out", core.ErrUpstreamTimeout)
		}
		return fmt.Errorf("%w: message delivery failed", core.ErrUpstream)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, maxResponseBodyBytes))

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: message endpoint returned status %d", core.ErrUpstream, response.StatusCode)
	}
	return nil
}

var _ core.MessagePoster = (*MessagePoster)(nil)
