package core

import (
	"context"
	"testing"
	"time"
)

func TestRunExpirySweep_FailsStalePendingInstallations(t *testing.T) {
	ctx := context.Background()
	fixture := newServiceFixture(t)
	fixture.seedAccount(ctx, t, "acme.example.com")
	fixture.seedExtension(ctx, t, "chat")

	stale, err := fixture.service.StartInstallation(ctx, StartInstallationRequest{
		AccountURL:    "acme.example.com",
		ExtensionCode: "chat",
	})
	if err != nil {
		t.Fatalf("start stale installation: %v", err)
	}
	fresh, err := fixture.service.StartInstallation(ctx, StartInstallationRequest{
		AccountURL:    "acme.example.com",
		ExtensionCode: "chat",
	})
	if err != nil {
		t.Fatalf("start fresh installation: %v", err)
	}

	fixture.installations.setUpdatedAt(stale.Installation.ID, time.Now().UTC().Add(-48*time.Hour))

	result, err := fixture.service.RunExpirySweep(ctx, ExpirySweepOptions{PendingTTL: 24 * time.Hour})
	if err != nil {
		t.Fatalf("run expiry sweep: %v", err)
	}
	if result.Scanned != 1 || result.Expired != 1 {
		t.Fatalf("expected one expired installation, got %+v", result)
	}

	expired, err := fixture.installations.Get(ctx, stale.Installation.ID)
	if err != nil {
		t.Fatalf("get stale installation: %v", err)
	}
	if expired.Status != InstallationStatusFailed {
		t.Fatalf("expected failed status, got %s", expired.Status)
	}
	if expired.LastError != expiryFailureReason {
		t.Fatalf("expected expiry reason, got %q", expired.LastError)
	}

	untouched, err := fixture.installations.Get(ctx, fresh.Installation.ID)
	if err != nil {
		t.Fatalf("get fresh installation: %v", err)
	}
	if untouched.Status != InstallationStatusAuthRedirected {
		t.Fatalf("expected fresh installation untouched, got %s", untouched.Status)
	}
}

func TestRunExpirySweep_IgnoresExchangedInstallations(t *testing.T) {
	ctx := context.Background()
	fixture := newServiceFixture(t)
	installation := installAndExchange(ctx, t, fixture)

	fixture.installations.setUpdatedAt(installation.ID, time.Now().UTC().Add(-72*time.Hour))

	result, err := fixture.service.RunExpirySweep(ctx, ExpirySweepOptions{PendingTTL: time.Hour})
	if err != nil {
		t.Fatalf("run expiry sweep: %v", err)
	}
	if result.Scanned != 0 {
		t.Fatalf("expected exchanged installation ignored, got %+v", result)
	}

	current, err := fixture.installations.Get(ctx, installation.ID)
	if err != nil {
		t.Fatalf("get installation: %v", err)
	}
	if current.Status != InstallationStatusTokenExchanged {
		t.Fatalf("expected status unchanged, got %s", current.Status)
	}
}

func TestRunExpirySweep_DefaultsTTLFromConfig(t *testing.T) {
	ctx := context.Background()
	fixture := newServiceFixture(t)
	fixture.seedAccount(ctx, t, "acme.example.com")
	fixture.seedExtension(ctx, t, "chat")

	started, err := fixture.service.StartInstallation(ctx, StartInstallationRequest{
		AccountURL:    "acme.example.com",
		ExtensionCode: "chat",
	})
	if err != nil {
		t.Fatalf("start installation: %v", err)
	}
	fixture.installations.setUpdatedAt(started.Installation.ID, time.Now().UTC().Add(-25*time.Hour))

	// Default pending TTL is 24h, so a 25h-old redirect is stale.
	result, err := fixture.service.RunExpirySweep(ctx, ExpirySweepOptions{})
	if err != nil {
		t.Fatalf("run expiry sweep: %v", err)
	}
	if result.Expired != 1 {
		t.Fatalf("expected default ttl to expire installation, got %+v", result)
	}
}
