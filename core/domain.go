package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound                            = errors.New("core: not found")
	ErrConflict                            = errors.New("core: conflict")
	ErrInvalidRequest                      = errors.New("core: invalid request")
	ErrAccountDisabled                     = errors.New("core: account is disabled")
	ErrUpstream                            = errors.New("core: upstream error")
	ErrUpstreamAuth                        = errors.New("core: upstream auth error")
	ErrUpstreamProvisioning                = errors.New("core: upstream provisioning error")
	ErrUpstreamTimeout                     = errors.New("core: upstream timeout")
	ErrPersistence                         = errors.New("core: persistence error")
	ErrCodeSpaceExhausted                  = errors.New("core: code space exhausted")
	ErrOAuthStateInvalid                   = errors.New("core: oauth state invalid")
	ErrInvalidInstallationStatusTransition = errors.New("core: invalid installation status transition")
)

type Account struct {
	ID          string
	Name        string
	DisplayName string
	URL         string
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("%w: account url is required", ErrInvalidRequest)
	}
	return nil
}

// Extension describes a registrable third-party OAuth integration: the remote
// endpoints, client credentials, and scope requested during installation.
type Extension struct {
	ID               string
	Code             string
	Name             string
	Description      string
	AuthorizationURL string
	TokenURL         string
	MessageURL       string
	ClientID         string
	ClientSecret     string
	Scope            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (e Extension) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: extension name is required", ErrInvalidRequest)
	}
	for field, value := range map[string]string{
		"authorization_url": e.AuthorizationURL,
		"token_url":         e.TokenURL,
	} {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return fmt.Errorf("%w: extension %s is required", ErrInvalidRequest, field)
		}
		if _, err := url.ParseRequestURI(trimmed); err != nil {
			return fmt.Errorf("%w: extension %s is not a valid url", ErrInvalidRequest, field)
		}
	}
	if strings.TrimSpace(e.ClientID) == "" {
		return fmt.Errorf("%w: extension client id is required", ErrInvalidRequest)
	}
	return nil
}

type InstallationStatus string

const (
	InstallationStatusPendingAuth      InstallationStatus = "pending_auth"
	InstallationStatusAuthRedirected   InstallationStatus = "authorization_redirected"
	InstallationStatusCallbackReceived InstallationStatus = "callback_received"
	InstallationStatusTokenExchanged   InstallationStatus = "token_exchanged"
	InstallationStatusProvisioned      InstallationStatus = "provisioned"
	InstallationStatusFailed           InstallationStatus = "failed"
)

// Installation binds one Account to one Extension and carries the OAuth access
// token once the callback exchange completes. Token moves from empty to
// populated exactly once; a second write is a conflict, never an overwrite.
type Installation struct {
	ID          string
	Code        string
	AccountID   string
	ExtensionID string
	Token       string
	Status      InstallationStatus
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *Installation) TransitionTo(status InstallationStatus, reason string, now time.Time) error {
	if i == nil {
		return nil
	}
	if i.Status == status {
		i.UpdatedAt = now
		return nil
	}
	if !installationTransitionAllowed(i.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidInstallationStatusTransition, i.Status, status)
	}
	i.Status = status
	i.UpdatedAt = now
	if strings.TrimSpace(reason) != "" {
		i.LastError = strings.TrimSpace(reason)
	}
	if status != InstallationStatusFailed {
		i.LastError = ""
	}
	return nil
}

func installationTransitionAllowed(current, next InstallationStatus) bool {
	if next == InstallationStatusFailed {
		return current != InstallationStatusProvisioned && current != InstallationStatusFailed
	}
	allowed := map[InstallationStatus]map[InstallationStatus]struct{}{
		InstallationStatusPendingAuth: {
			InstallationStatusAuthRedirected:   {},
			InstallationStatusCallbackReceived: {},
		},
		InstallationStatusAuthRedirected: {
			InstallationStatusCallbackReceived: {},
		},
		InstallationStatusCallbackReceived: {
			InstallationStatusTokenExchanged: {},
		},
		InstallationStatusTokenExchanged: {
			InstallationStatusProvisioned: {},
		},
		InstallationStatusProvisioned: {},
		InstallationStatusFailed:      {},
	}
	_, ok := allowed[current][next]
	return ok
}

// Profile is the per-installation configuration record created together with
// its Installation. Webhook provisioning anchors on the profile's remote API
// credentials.
type Profile struct {
	ID             string
	InstallationID string
	Code           string
	Name           string
	AppKey         string
	AppSecret      string
	TokenURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WebhookRegistration records a remote outgoing-webhook subscription. At most
// one active registration exists per installation.
type WebhookRegistration struct {
	ID             string
	InstallationID string
	RemoteID       string
	Secret         string
	CallbackURL    string
	CreatedAt      time.Time
}

// Action binds a source table/event to an outbound message for an
// installation. Actions have an independent lifecycle and are not required for
// OAuth completion.
type Action struct {
	ID             string
	InstallationID string
	Name           string
	TableSource    string
	EventType      string
	Message        string
	ResponseField  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a Action) Validate() error {
	if strings.TrimSpace(a.InstallationID) == "" {
		return fmt.Errorf("%w: action installation id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: action name is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(a.TableSource) == "" {
		return fmt.Errorf("%w: action table source is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(a.EventType) == "" {
		return fmt.Errorf("%w: action event type is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(a.Message) == "" {
		return fmt.Errorf("%w: action message is required", ErrInvalidRequest)
	}
	return nil
}
