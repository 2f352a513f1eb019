// Package inbound maps a host's HTTP surface onto orchestrator calls without
// binding to any particular web framework. Results carry the status code and
// redirect target the host should emit.
package inbound

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-extensions/core"
)

type InstallRequest struct {
	AccountURL    string
	ExtensionCode string
}

// RedirectResult tells the host what to answer: a 302 to Location on success,
// or the mapped error status otherwise.
type RedirectResult struct {
	StatusCode int
	Location   string
	State      string
}

type CallbackOutcome struct {
	StatusCode   int
	Installation core.Installation
}

// DeliveryRequest is an inbound webhook delivery from the remote service. The
// signature covers the raw body and is verified against the installation's
// stored signing secret.
type DeliveryRequest struct {
	InstallationID string
	Body           []byte
	Signature      string
}

type DeliveryOutcome struct {
	StatusCode int
	Accepted   bool
}

type DeliveryVerifier interface {
	Verify(body []byte, signature string) error
}

type SecretSource interface {
	SigningSecret(ctx context.Context, installationID string) (string, error)
}

// WebhookSecretSource resolves signing secrets through the webhook store.
type WebhookSecretSource struct {
	Store core.WebhookStore
}

func (s WebhookSecretSource) SigningSecret(ctx context.Context, installationID string) (string, error) {
	if s.Store == nil {
		return "", inboundInternal("inbound: webhook store is required", nil)
	}
	registration, err := s.Store.GetByInstallation(ctx, installationID)
	if err != nil {
		return "", err
	}
	return registration.Secret, nil
}

type VerifierFactory func(secret string) DeliveryVerifier

type Dispatcher struct {
	Service      core.InstallationService
	Secrets      SecretSource
	MakeVerifier VerifierFactory
}

func NewDispatcher(service core.InstallationService, secrets SecretSource, makeVerifier VerifierFactory) *Dispatcher {
	return &Dispatcher{
		Service:      service,
		Secrets:      secrets,
		MakeVerifier: makeVerifier,
	}
}

// DispatchInstall starts an installation and returns the 302 redirect decision.
func (d *Dispatcher) DispatchInstall(ctx context.Context, req InstallRequest) (RedirectResult, error) {
	if d == nil || d.Service == nil {
		return RedirectResult{StatusCode: http.StatusInternalServerError},
			inboundInternal("inbound: dispatcher service is required", nil)
	}
	if strings.TrimSpace(req.AccountURL) == "" {
		return RedirectResult{StatusCode: http.StatusBadRequest},
			inboundBadInput("inbound: account url is required", nil)
	}
	if strings.TrimSpace(req.ExtensionCode) == "" {
		return RedirectResult{StatusCode: http.StatusBadRequest},
			inboundBadInput("inbound: extension code is required", map[string]any{
				"account_url": req.AccountURL,
			})
	}

	result, err := d.Service.StartInstallation(ctx, core.StartInstallationRequest{
		AccountURL:    req.AccountURL,
		ExtensionCode: req.ExtensionCode,
	})
	if err != nil {
		return RedirectResult{StatusCode: statusFromError(err)}, err
	}
	return RedirectResult{
		StatusCode: http.StatusFound,
		Location:   result.RedirectURL,
		State:      result.State,
	}, nil
}

// DispatchCallback completes the OAuth callback and maps failures onto the
// status the host should answer with.
func (d *Dispatcher) DispatchCallback(ctx context.Context, req core.CallbackRequest) (CallbackOutcome, error) {
	if d == nil || d.Service == nil {
		return CallbackOutcome{StatusCode: http.StatusInternalServerError},
			inboundInternal("inbound: dispatcher service is required", nil)
	}

	result, err := d.Service.HandleCallback(ctx, req)
	if err != nil {
		return CallbackOutcome{StatusCode: statusFromError(err)}, err
	}
	return CallbackOutcome{
		StatusCode:   http.StatusOK,
		Installation: result.Installation,
	}, nil
}

// DispatchDelivery verifies an inbound webhook delivery signature. Rejections
// answer 401; unknown installations answer 404.
func (d *Dispatcher) DispatchDelivery(ctx context.Context, req DeliveryRequest) (DeliveryOutcome, error) {
	if d == nil || d.Secrets == nil || d.MakeVerifier == nil {
		return DeliveryOutcome{StatusCode: http.StatusInternalServerError},
			inboundInternal("inbound: secret source and verifier factory are required", nil)
	}
	if strings.TrimSpace(req.InstallationID) == "" {
		return DeliveryOutcome{StatusCode: http.StatusBadRequest},
			inboundBadInput("inbound: installation id is required", nil)
	}

	secret, err := d.Secrets.SigningSecret(ctx, req.InstallationID)
	if err != nil {
		return DeliveryOutcome{StatusCode: statusFromError(err)}, err
	}
	if verifyErr := d.MakeVerifier(secret).Verify(req.Body, req.Signature); verifyErr != nil {
		return DeliveryOutcome{StatusCode: http.StatusUnauthorized}, inboundWrapError(
			verifyErr,
			goerrors.CategoryAuth,
			"inbound: delivery verification failed",
			http.StatusUnauthorized,
			core.ExtensionErrorUnauthorized,
			map[string]any{"installation_id": req.InstallationID},
		)
	}
	return DeliveryOutcome{StatusCode: http.StatusOK, Accepted: true}, nil
}

func statusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return http.StatusInternalServerError
}
