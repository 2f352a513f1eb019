package core

import (
	"errors"
	"testing"
	"time"
)

func TestInstallationTransitionTo_HappyPath(t *testing.T) {
	now := time.Now().UTC()
	installation := Installation{Status: InstallationStatusPendingAuth}

	steps := []InstallationStatus{
		InstallationStatusAuthRedirected,
		InstallationStatusCallbackReceived,
		InstallationStatusTokenExchanged,
		InstallationStatusProvisioned,
	}
	for _, status := range steps {
		if err := installation.TransitionTo(status, "", now); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if installation.Status != status {
			t.Fatalf("expected status %s, got %s", status, installation.Status)
		}
	}
}

func TestInstallationTransitionTo_RejectsSkips(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		from InstallationStatus
		to   InstallationStatus
	}{
		{InstallationStatusPendingAuth, InstallationStatusTokenExchanged},
		{InstallationStatusPendingAuth, InstallationStatusProvisioned},
		{InstallationStatusAuthRedirected, InstallationStatusTokenExchanged},
		{InstallationStatusCallbackReceived, InstallationStatusProvisioned},
		{InstallationStatusProvisioned, InstallationStatusCallbackReceived},
		{InstallationStatusFailed, InstallationStatusTokenExchanged},
	}
	for _, tc := range cases {
		installation := Installation{Status: tc.from}
		err := installation.TransitionTo(tc.to, "", now)
		if !errors.Is(err, ErrInvalidInstallationStatusTransition) {
			t.Fatalf("expected invalid transition %s -> %s, got %v", tc.from, tc.to, err)
		}
	}
}

func TestInstallationTransitionTo_FailedFromAnyNonTerminal(t *testing.T) {
	now := time.Now().UTC()
	for _, from := range []InstallationStatus{
		InstallationStatusPendingAuth,
		InstallationStatusAuthRedirected,
		InstallationStatusCallbackReceived,
		InstallationStatusTokenExchanged,
	} {
		installation := Installation{Status: from}
		if err := installation.TransitionTo(InstallationStatusFailed, "upstream exploded", now); err != nil {
			t.Fatalf("transition %s -> failed: %v", from, err)
		}
		if installation.LastError != "upstream exploded" {
			t.Fatalf("expected failure reason recorded, got %q", installation.LastError)
		}
	}

	installation := Installation{Status: InstallationStatusProvisioned}
	if err := installation.TransitionTo(InstallationStatusFailed, "", now); err == nil {
		t.Fatalf("expected provisioned -> failed to be rejected")
	}
}

func TestInstallationTransitionTo_ClearsLastErrorOnRecovery(t *testing.T) {
	now := time.Now().UTC()
	installation := Installation{Status: InstallationStatusAuthRedirected, LastError: "stale"}
	if err := installation.TransitionTo(InstallationStatusCallbackReceived, "", now); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if installation.LastError != "" {
		t.Fatalf("expected last error cleared, got %q", installation.LastError)
	}
}

func TestInstallationTransitionTo_SameStatusIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	installation := Installation{Status: InstallationStatusTokenExchanged}
	if err := installation.TransitionTo(InstallationStatusTokenExchanged, "", now); err != nil {
		t.Fatalf("same-status transition: %v", err)
	}
}

func TestExtensionValidate(t *testing.T) {
	valid := Extension{
		Name:             "Chat Tool",
		AuthorizationURL: "https://chat.example.com/oauth/authorize",
		TokenURL:         "https://chat.example.com/oauth/token",
		ClientID:         "client-1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid extension rejected: %v", err)
	}

	broken := valid
	broken.TokenURL = "not a url"
	if err := broken.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid token url error, got %v", err)
	}

	broken = valid
	broken.ClientID = " "
	if err := broken.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected missing client id error, got %v", err)
	}
}

func TestActionValidate(t *testing.T) {
	valid := Action{
		InstallationID: "inst_1",
		Name:           "notify",
		TableSource:    "orders",
		EventType:      "created",
		Message:        "order {id} created",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid action rejected: %v", err)
	}

	broken := valid
	broken.Message = ""
	if err := broken.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected missing message error, got %v", err)
	}
}
