package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type memoryAccountStore struct {
	mu   sync.Mutex
	next int
	byID map[string]Account
}

func newMemoryAccountStore() *memoryAccountStore {
	return &memoryAccountStore{byID: map[string]Account{}}
}

func (s *memoryAccountStore) Create(_ context.Context, in CreateAccountInput) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.URL == in.URL {
			return Account{}, fmt.Errorf("%w: account url already registered", ErrConflict)
		}
	}
	s.next++
	now := time.Now().UTC()
	account := Account{
		ID:          fmt.Sprintf("acct_%d", s.next),
		Name:        in.Name,
		DisplayName: in.DisplayName,
		URL:         in.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.byID[account.ID] = account
	return account, nil
}

func (s *memoryAccountStore) Get(_ context.Context, id string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	return account, nil
}

func (s *memoryAccountStore) GetByURL(_ context.Context, accountURL string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if account.URL == accountURL {
			return account, nil
		}
	}
	return Account{}, fmt.Errorf("%w: account %s", ErrNotFound, accountURL)
}

func (s *memoryAccountStore) List(context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Account, 0, len(s.byID))
	for _, account := range s.byID {
		out = append(out, account)
	}
	return out, nil
}

func (s *memoryAccountStore) SetDisabled(_ context.Context, id string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: account %s", ErrNotFound, id)
	}
	account.Disabled = disabled
	account.UpdatedAt = time.Now().UTC()
	s.byID[id] = account
	return nil
}

type memoryExtensionStore struct {
	mu   sync.Mutex
	next int
	byID map[string]Extension
}

func newMemoryExtensionStore() *memoryExtensionStore {
	return &memoryExtensionStore{byID: map[string]Extension{}}
}

func (s *memoryExtensionStore) Create(_ context.Context, in CreateExtensionInput) (Extension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Code == in.Code {
			return Extension{}, fmt.Errorf("%w: extension code already registered", ErrConflict)
		}
	}
	s.next++
	now := time.Now().UTC()
	extension := Extension{
		ID:               fmt.Sprintf("ext_%d", s.next),
		Code:             in.Code,
		Name:             in.Name,
		Description:      in.Description,
		AuthorizationURL: in.AuthorizationURL,
		TokenURL:         in.TokenURL,
		MessageURL:       in.MessageURL,
		ClientID:         in.ClientID,
		ClientSecret:     in.ClientSecret,
		Scope:            in.Scope,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.byID[extension.ID] = extension
	return extension, nil
}

func (s *memoryExtensionStore) Get(_ context.Context, id string) (Extension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	extension, ok := s.byID[id]
	if !ok {
		return Extension{}, fmt.Errorf("%w: extension %s", ErrNotFound, id)
	}
	return extension, nil
}

func (s *memoryExtensionStore) GetByCode(_ context.Context, code string) (Extension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, extension := range s.byID {
		if extension.Code == code {
			return extension, nil
		}
	}
	return Extension{}, fmt.Errorf("%w: extension %s", ErrNotFound, code)
}

func (s *memoryExtensionStore) List(context.Context) ([]Extension, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Extension, 0, len(s.byID))
	for _, extension := range s.byID {
		out = append(out, extension)
	}
	return out, nil
}

func (s *memoryExtensionStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, extension := range s.byID {
		if extension.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type memoryInstallationStore struct {
	mu       sync.Mutex
	byID     map[string]Installation
	profiles *memoryProfileStore
}

func newMemoryInstallationStore(profiles *memoryProfileStore) *memoryInstallationStore {
	return &memoryInstallationStore{byID: map[string]Installation{}, profiles: profiles}
}

func (s *memoryInstallationStore) CreateWithProfile(_ context.Context, installation Installation, profile Profile) (Installation, Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Code == installation.Code {
			return Installation{}, Profile{}, fmt.Errorf("%w: installation code collision", ErrConflict)
		}
	}
	s.byID[installation.ID] = installation
	if s.profiles != nil {
		if err := s.profiles.put(profile); err != nil {
			delete(s.byID, installation.ID)
			return Installation{}, Profile{}, err
		}
	}
	return installation, profile, nil
}

func (s *memoryInstallationStore) Get(_ context.Context, id string) (Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	installation, ok := s.byID[id]
	if !ok {
		return Installation{}, fmt.Errorf("%w: installation %s", ErrNotFound, id)
	}
	return installation, nil
}

func (s *memoryInstallationStore) ListByAccount(_ context.Context, accountID string) ([]Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Installation{}
	for _, installation := range s.byID {
		if installation.AccountID == accountID {
			out = append(out, installation)
		}
	}
	return out, nil
}

func (s *memoryInstallationStore) ListByExtension(_ context.Context, extensionID string) ([]Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Installation{}
	for _, installation := range s.byID {
		if installation.ExtensionID == extensionID {
			out = append(out, installation)
		}
	}
	return out, nil
}

func (s *memoryInstallationStore) SetToken(_ context.Context, id string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	installation, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: installation %s", ErrNotFound, id)
	}
	if installation.Token != "" {
		return fmt.Errorf("%w: installation %s already holds a token", ErrConflict, id)
	}
	installation.Token = token
	installation.UpdatedAt = time.Now().UTC()
	s.byID[id] = installation
	return nil
}

func (s *memoryInstallationStore) UpdateStatus(_ context.Context, id string, status InstallationStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	installation, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: installation %s", ErrNotFound, id)
	}
	if err := installation.TransitionTo(status, reason, time.Now().UTC()); err != nil {
		return err
	}
	s.byID[id] = installation
	return nil
}

func (s *memoryInstallationStore) ListStale(_ context.Context, statuses []InstallationStatus, before time.Time, limit int) ([]Installation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[InstallationStatus]struct{}{}
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}
	out := []Installation{}
	for _, installation := range s.byID {
		if _, ok := wanted[installation.Status]; !ok {
			continue
		}
		if !installation.UpdatedAt.Before(before) {
			continue
		}
		out = append(out, installation)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *memoryInstallationStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, installation := range s.byID {
		if installation.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// setStatus bypasses transition checks for test setup.
func (s *memoryInstallationStore) setStatus(id string, status InstallationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	installation := s.byID[id]
	installation.Status = status
	s.byID[id] = installation
}

func (s *memoryInstallationStore) setUpdatedAt(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	installation := s.byID[id]
	installation.UpdatedAt = at
	s.byID[id] = installation
}

type memoryProfileStore struct {
	mu               sync.Mutex
	byInstallationID map[string]Profile
	updateErr        error
}

func newMemoryProfileStore() *memoryProfileStore {
	return &memoryProfileStore{byInstallationID: map[string]Profile{}}
}

func (s *memoryProfileStore) put(profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byInstallationID {
		if existing.Code == profile.Code {
			return fmt.Errorf("%w: profile code collision", ErrConflict)
		}
	}
	s.byInstallationID[profile.InstallationID] = profile
	return nil
}

func (s *memoryProfileStore) GetByInstallation(_ context.Context, installationID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.byInstallationID[installationID]
	if !ok {
		return Profile{}, fmt.Errorf("%w: profile for installation %s", ErrNotFound, installationID)
	}
	return profile, nil
}

func (s *memoryProfileStore) UpdateCredentials(_ context.Context, in UpdateProfileCredentialsInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	profile, ok := s.byInstallationID[in.InstallationID]
	if !ok {
		return fmt.Errorf("%w: profile for installation %s", ErrNotFound, in.InstallationID)
	}
	if strings.TrimSpace(in.Name) != "" {
		profile.Name = in.Name
	}
	profile.AppKey = in.AppKey
	profile.AppSecret = in.AppSecret
	profile.TokenURL = in.TokenURL
	profile.UpdatedAt = time.Now().UTC()
	s.byInstallationID[in.InstallationID] = profile
	return nil
}

func (s *memoryProfileStore) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.byInstallationID {
		if profile.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type memoryWebhookStore struct {
	mu            sync.Mutex
	next          int
	byInstall     map[string]WebhookRegistration
	installations *memoryInstallationStore
}

func newMemoryWebhookStore(installations *memoryInstallationStore) *memoryWebhookStore {
	return &memoryWebhookStore{byInstall: map[string]WebhookRegistration{}, installations: installations}
}

func (s *memoryWebhookStore) CreateRegistration(ctx context.Context, in CreateWebhookRegistrationInput) (WebhookRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byInstall[in.InstallationID]; exists {
		return WebhookRegistration{}, fmt.Errorf("%w: installation already has a webhook registration", ErrConflict)
	}
	if s.installations != nil {
		installation, err := s.installations.Get(ctx, in.InstallationID)
		if err != nil {
			return WebhookRegistration{}, err
		}
		if installation.Status != InstallationStatusTokenExchanged {
			return WebhookRegistration{}, fmt.Errorf("%w: installation is not awaiting provisioning", ErrConflict)
		}
		if err := s.installations.UpdateStatus(ctx, in.InstallationID, InstallationStatusProvisioned, ""); err != nil {
			return WebhookRegistration{}, err
		}
	}
	s.next++
	registration := WebhookRegistration{
		ID:             fmt.Sprintf("wh_%d", s.next),
		InstallationID: in.InstallationID,
		RemoteID:       in.RemoteID,
		Secret:         in.Secret,
		CallbackURL:    in.CallbackURL,
		CreatedAt:      time.Now().UTC(),
	}
	s.byInstall[in.InstallationID] = registration
	return registration, nil
}

func (s *memoryWebhookStore) GetByInstallation(_ context.Context, installationID string) (WebhookRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	registration, ok := s.byInstall[installationID]
	if !ok {
		return WebhookRegistration{}, fmt.Errorf("%w: webhook registration for installation %s", ErrNotFound, installationID)
	}
	return registration, nil
}

type memoryActionStore struct {
	mu   sync.Mutex
	byID map[string]Action
}

func newMemoryActionStore() *memoryActionStore {
	return &memoryActionStore{byID: map[string]Action{}}
}

func (s *memoryActionStore) Create(_ context.Context, action Action) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[action.ID] = action
	return action, nil
}

func (s *memoryActionStore) Get(_ context.Context, id string) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok := s.byID[id]
	if !ok {
		return Action{}, fmt.Errorf("%w: action %s", ErrNotFound, id)
	}
	return action, nil
}

func (s *memoryActionStore) ListByInstallation(_ context.Context, installationID string) ([]Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Action{}
	for _, action := range s.byID {
		if action.InstallationID == installationID {
			out = append(out, action)
		}
	}
	return out, nil
}

type stubExchangeClient struct {
	mu               sync.Mutex
	authCodeToken    string
	authCodeErr      error
	machineToken     string
	machineErr       error
	authCodeCalls    []AuthorizationCodeRequest
	clientCredsCalls []ClientCredentialsRequest
}

func (c *stubExchangeClient) ExchangeAuthorizationCode(_ context.Context, req AuthorizationCodeRequest) (TokenResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authCodeCalls = append(c.authCodeCalls, req)
	if c.authCodeErr != nil {
		return TokenResult{}, c.authCodeErr
	}
	return TokenResult{AccessToken: c.authCodeToken}, nil
}

func (c *stubExchangeClient) ClientCredentialsToken(_ context.Context, req ClientCredentialsRequest) (TokenResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientCredsCalls = append(c.clientCredsCalls, req)
	if c.machineErr != nil {
		return TokenResult{}, c.machineErr
	}
	return TokenResult{AccessToken: c.machineToken}, nil
}

type stubProvisioner struct {
	mu       sync.Mutex
	endpoint WebhookEndpoint
	err      error
	calls    []RegisterWebhookRequest
}

func (p *stubProvisioner) RegisterOutgoingWebhook(_ context.Context, req RegisterWebhookRequest) (WebhookEndpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return WebhookEndpoint{}, p.err
	}
	return p.endpoint, nil
}

type stubMessagePoster struct {
	mu    sync.Mutex
	err   error
	calls []PostMessageRequest
}

func (p *stubMessagePoster) Post(_ context.Context, req PostMessageRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	return p.err
}

type serviceFixture struct {
	service       *Service
	accounts      *memoryAccountStore
	extensions    *memoryExtensionStore
	installations *memoryInstallationStore
	profiles      *memoryProfileStore
	webhooks      *memoryWebhookStore
	actions       *memoryActionStore
	exchange      *stubExchangeClient
	provisioner   *stubProvisioner
	poster        *stubMessagePoster
	states        *MemoryOAuthStateStore
}

func newServiceFixture(t interface {
	Helper()
	Fatalf(format string, args ...any)
}) *serviceFixture {
	t.Helper()

	accounts := newMemoryAccountStore()
	extensions := newMemoryExtensionStore()
	profiles := newMemoryProfileStore()
	installations := newMemoryInstallationStore(profiles)
	webhooks := newMemoryWebhookStore(installations)
	actions := newMemoryActionStore()
	exchange := &stubExchangeClient{authCodeToken: "tok-user", machineToken: "tok-machine"}
	provisioner := &stubProvisioner{endpoint: WebhookEndpoint{ID: "remote-1", Secret: "sec-1"}}
	poster := &stubMessagePoster{}
	states := NewMemoryOAuthStateStore(time.Minute)

	cfg := DefaultConfig()
	cfg.CallbackBaseURL = "https://hooks.example.com/extensions"

	svc, err := NewService(
		cfg,
		WithAccountStore(accounts),
		WithExtensionStore(extensions),
		WithInstallationStore(installations),
		WithProfileStore(profiles),
		WithWebhookStore(webhooks),
		WithActionStore(actions),
		WithExchangeClient(exchange),
		WithWebhookProvisioner(provisioner),
		WithMessagePoster(poster),
		WithOAuthStateStore(states),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &serviceFixture{
		service:       svc,
		accounts:      accounts,
		extensions:    extensions,
		installations: installations,
		profiles:      profiles,
		webhooks:      webhooks,
		actions:       actions,
		exchange:      exchange,
		provisioner:   provisioner,
		poster:        poster,
		states:        states,
	}
}

func (f *serviceFixture) seedAccount(ctx context.Context, t interface {
	Helper()
	Fatalf(format string, args ...any)
}, accountURL string) Account {
	t.Helper()
	account, err := f.service.CreateAccount(ctx, CreateAccountInput{
		Name: "Acme",
		URL:  accountURL,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func (f *serviceFixture) seedExtension(ctx context.Context, t interface {
	Helper()
	Fatalf(format string, args ...any)
}, code string) Extension {
	t.Helper()
	extension, err := f.service.CreateExtension(ctx, CreateExtensionInput{
		Code:             code,
		Name:             "Chat Tool",
		AuthorizationURL: "https://chat.example.com/oauth/authorize",
		TokenURL:         "https://chat.example.com/oauth/token",
		MessageURL:       "https://chat.example.com/api/messages",
		ClientID:         "client-1",
		ClientSecret:     "secret-1",
		Scope:            "chat:write",
	})
	if err != nil {
		t.Fatalf("seed extension: %v", err)
	}
	return extension
}
