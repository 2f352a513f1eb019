// Package exchange implements the outbound token flows against an extension's
// declared endpoints: the authorization-code exchange on callback and the
// client-credentials grant used during webhook provisioning.
package exchange

import (
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
	defaultRequestTimeout     = 10 * time.Second
	maxTokenResponseBodyBytes = 1 << 20
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	RequestTimeout time.Duration
}

type Client struct {
	cfg        Config
	httpClient HTTPDoer
	logger     core.Logger
}

type Option func(*Client)

func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(cfg Config, options ...Option) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	_, logger := glog.Resolve("exchange", nil, nil)
	client := &Client{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	client.logger = glog.Ensure(client.logger)
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return client
}

// tokenReply is the wire shape of both token endpoints. The authorization-code
// endpoint adds an ok flag and an error string alongside the token.
type tokenReply struct {
	OK          *bool  `json:"ok,omitempty"`
	AccessToken string `json:"access_token"`
	Error       string `json:"error,omitempty"`
}

func (c *Client) ExchangeAuthorizationCode(ctx context.Context, req core.AuthorizationCodeRequest) (core.TokenResult, error) {
	if strings.TrimSpace(req.TokenURL) == "" {
		return core.TokenResult{}, fmt.Errorf("%w: token url is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Code) == "" {
		return core.TokenResult{}, fmt.Errorf("%w: authorization code is required", core.ErrInvalidRequest)
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", req.ClientID)
	form.Set("client_secret", req.ClientSecret)
	form.Set("code", req.Code)
	if strings.TrimSpace(req.RedirectURI) != "" {
		form.Set("redirect_uri", req.RedirectURI)
	}

	reply, err := c.postTokenForm(ctx, req.TokenURL, form)
	if err != nil {
		return core.TokenResult{}, err
	}
	if reply.OK != nil && !*reply.OK {
		return core.TokenResult{}, fmt.Errorf("%w: %s", core.ErrUpstream, describeReplyError(reply))
	}
	if strings.TrimSpace(reply.AccessToken) == "" {
		return core.TokenResult{}, fmt.Errorf("%w: token endpoint response missing access token", core.ErrUpstream)
	}
	return core.TokenResult{AccessToken: reply.AccessToken}, nil
}

func (c *Client) ClientCredentialsToken(ctx context.Context, req core.ClientCredentialsRequest) (core.TokenResult, error) {
	if strings.TrimSpace(req.TokenURL) == "" {
		return core.TokenResult{}, fmt.Errorf("%w: token url is required", core.ErrInvalidRequest)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", req.AppKey)
	form.Set("client_secret", req.AppSecret)

	reply, err := c.postTokenForm(ctx, req.TokenURL, form)
	if err != nil {
		return core.TokenResult{}, err
	}
	if strings.TrimSpace(reply.AccessToken) == "" {
		return core.TokenResult{}, fmt.Errorf("%w: token endpoint response missing access token", core.ErrUpstreamAuth)
	}
	return core.TokenResult{AccessToken: reply.AccessToken}, nil
}

func (c *Client) postTokenForm(ctx context.Context, tokenURL string, form url.Values) (tokenReply, error) {
	if c == nil || c.httpClient == nil {
		return tokenReply{}, fmt.Errorf("exchange: http client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger.Debug("token request", "url", tokenURL, "grant_type", form.Get("grant_type"))

	requestCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodPost,
		tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return tokenReply{}, fmt.Errorf("%w: build token request: %v", core.ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeoutErr(err) {
			return tokenReply{}, fmt.Errorf("%w: token request timed out", core.ErrUpstreamTimeout)
		}
		return tokenReply{}, fmt.Errorf("%w: token request failed", core.ErrUpstream)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxTokenResponseBodyBytes+1))
	if readErr != nil {
		return tokenReply{}, fmt.Errorf("%w: read token response", core.ErrUpstream)
	}
	if int64(len(body)) > maxTokenResponseBodyBytes {
		return tokenReply{}, fmt.Errorf("%w: token response exceeds %d bytes", core.ErrUpstream, maxTokenResponseBodyBytes)
	}

	var reply tokenReply
	if len(strings.TrimSpace(string(body))) > 0 {
		if decodeErr := json.Unmarshal(body, &reply); decodeErr != nil {
			return tokenReply{}, fmt.Errorf("%w: decode token response", core.ErrUpstream)
		}
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return tokenReply{}, fmt.Errorf(
			"%w: token endpoint error (%d): %s",
			core.ErrUpstreamAuth, response.StatusCode, describeReplyError(reply),
		)
	}
	return reply, nil
}

func describeReplyError(reply tokenReply) string {
	if trimmed := strings.TrimSpace(reply.Error); trimmed != "" {
		return trimmed
	}
	return "unknown error"
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

var _ core.ExchangeClient = (*Client)(nil)
