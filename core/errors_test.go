package core

import (
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestExtensionErrorMapper_SentinelMapping(t *testing.T) {
	cases := []struct {
		err      error
		textCode string
		httpCode int
	}{
		{fmt.Errorf("%w: account x", ErrNotFound), ExtensionErrorNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: bad field", ErrInvalidRequest), ExtensionErrorBadInput, http.StatusBadRequest},
		{fmt.Errorf("%w: taken", ErrConflict), ExtensionErrorConflict, http.StatusConflict},
		{fmt.Errorf("%w: account y", ErrAccountDisabled), ExtensionErrorConflict, http.StatusConflict},
		{fmt.Errorf("%w: gone", ErrOAuthStateInvalid), ExtensionErrorOAuthStateInvalid, http.StatusUnauthorized},
		{fmt.Errorf("%w: slow", ErrUpstreamTimeout), ExtensionErrorUpstreamTimeout, http.StatusGatewayTimeout},
		{fmt.Errorf("%w: denied", ErrUpstreamAuth), ExtensionErrorUpstreamAuth, http.StatusBadGateway},
		{fmt.Errorf("%w: 500", ErrUpstreamProvisioning), ExtensionErrorUpstreamWebhook, http.StatusBadGateway},
		{fmt.Errorf("%w: broke", ErrUpstream), ExtensionErrorUpstream, http.StatusBadGateway},
		{fmt.Errorf("%w: unlucky", ErrCodeSpaceExhausted), ExtensionErrorCodeExhausted, http.StatusBadGateway},
		{fmt.Errorf("%w: db down", ErrPersistence), ExtensionErrorPersistence, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		mapped := extensionErrorMapper(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapped error for %v", tc.err)
		}
		if mapped.TextCode != tc.textCode {
			t.Fatalf("expected text code %s for %v, got %s", tc.textCode, tc.err, mapped.TextCode)
		}
		if mapped.Code != tc.httpCode {
			t.Fatalf("expected http code %d for %v, got %d", tc.httpCode, tc.err, mapped.Code)
		}
	}
}

func TestExtensionErrorMapper_PreservesExistingEnvelope(t *testing.T) {
	original := goerrors.New("already shaped", goerrors.CategoryConflict).WithTextCode(ExtensionErrorConflict)
	mapped := extensionErrorMapper(original)
	if mapped != original {
		t.Fatalf("expected envelope passthrough")
	}
	if mapped.Code != http.StatusConflict {
		t.Fatalf("expected conflict status backfilled, got %d", mapped.Code)
	}
}

func TestExtensionErrorMapper_HeuristicFallback(t *testing.T) {
	mapped := extensionErrorMapper(fmt.Errorf("profile name is required"))
	if mapped.TextCode != ExtensionErrorBadInput {
		t.Fatalf("expected bad input heuristic, got %s", mapped.TextCode)
	}

	mapped = extensionErrorMapper(fmt.Errorf("oauth state mismatch for extension"))
	if mapped.TextCode != ExtensionErrorOAuthStateInvalid {
		t.Fatalf("expected oauth state heuristic, got %s", mapped.TextCode)
	}
}

func TestExtensionErrorMapper_NilError(t *testing.T) {
	if mapped := extensionErrorMapper(nil); mapped != nil {
		t.Fatalf("expected nil for nil error, got %v", mapped)
	}
}
