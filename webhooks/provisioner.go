// Package webhooks talks to the remote service's webhook management API and
// verifies inbound deliveries against the signing secret it hands back.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-extensions/core"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	outgoingWebhooksPath = "rest/v2/outgoingWebhooks"

	defaultRequestTimeout = 10 * time.Second
	maxResponseBodyBytes  = 1 << 20
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	RequestTimeout time.Duration
}

type Provisioner struct {
	cfg        Config
	httpClient HTTPDoer
	logger     core.Logger
}

type Option func(*Provisioner)

func WithHTTPClient(client HTTPDoer) Option {
	return func(p *Provisioner) {
		p.httpClient = client
	}
}

func WithLogger(logger core.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

func NewProvisioner(cfg Config, options ...Option) *Provisioner {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	_, logger := glog.Resolve("webhooks", nil, nil)
	provisioner := &Provisioner{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(provisioner)
	}
	provisioner.logger = glog.Ensure(provisioner.logger)
	if provisioner.httpClient == nil {
		provisioner.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return provisioner
}

type createWebhookBody struct {
	Name         string   `json:"Name"`
	OutgoingUrls []string `json:"OutgoingUrls"`
}

type createWebhookReply struct {
	ID     string `json:"ID"`
	Secret string `json:"Secret"`
}

// RegisterOutgoingWebhook creates the remote outgoing-webhook subscription.
// The management API answers 201 with the remote identifier and the signing
// secret used for inbound delivery verification.
func (p *Provisioner) RegisterOutgoingWebhook(ctx context.Context, req core.RegisterWebhookRequest) (core.WebhookEndpoint, error) {
	if p == nil || p.httpClient == nil {
		return core.WebhookEndpoint{}, fmt.Errorf("webhooks: http client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: remote base url is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: access token is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.CallbackURL) == "" {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: callback url is required", core.ErrInvalidRequest)
	}

	payload, err := json.Marshal(createWebhookBody{
		Name:         req.Name,
		OutgoingUrls: []string{req.CallbackURL},
	})
	if err != nil {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: encode webhook request", core.ErrInvalidRequest)
	}

	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	endpoint := base + outgoingWebhooksPath

	requestCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: build webhook request", core.ErrInvalidRequest)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.AccessToken)

	p.logger.Debug("register outgoing webhook", "endpoint", endpoint, "name", req.Name)

	response, err := p.httpClient.Do(httpReq)
	if err != nil {
		if isTimeoutErr(err) {
			return core.WebhookEndpoint{}, fmt.Errorf("%w: webhook registration timed out", core.ErrUpstreamTimeout)
		}
		return core.WebhookEndpoint{}, fmt.Errorf("%w: webhook registration request failed", core.ErrUpstreamProvisioning)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxResponseBodyBytes+1))
	if readErr != nil {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: read webhook registration response", core.ErrUpstreamProvisioning)
	}
	if int64(len(body)) > maxResponseBodyBytes {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: webhook registration response exceeds %d bytes", core.ErrUpstreamProvisioning, maxResponseBodyBytes)
	}
	if response.StatusCode != http.StatusCreated {
		return core.WebhookEndpoint{}, fmt.Errorf(
			"%w: webhook registration returned status %d",
			core.ErrUpstreamProvisioning, response.StatusCode,
		)
	}

	var reply createWebhookReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: decode webhook registration response", core.ErrUpstreamProvisioning)
	}
	if strings.TrimSpace(reply.ID) == "" || strings.TrimSpace(reply.Secret) == "" {
		return core.WebhookEndpoint{}, fmt.Errorf("%w: webhook registration response missing id or secret", core.ErrUpstreamProvisioning)
	}

	return core.WebhookEndpoint{ID: reply.ID, Secret: reply.Secret}, nil
}

func isTimeoutErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

var _ core.WebhookProvisioner = (*Provisioner)(nil)
