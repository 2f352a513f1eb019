package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string)         {}
func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

type AccountStore interface {
	Create(ctx context.Context, in CreateAccountInput) (Account, error)
	Get(ctx context.Context, id string) (Account, error)
	GetByURL(ctx context.Context, accountURL string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

type ExtensionStore interface {
	Create(ctx context.Context, in CreateExtensionInput) (Extension, error)
	Get(ctx context.Context, id string) (Extension, error)
	GetByCode(ctx context.Context, code string) (Extension, error)
	List(ctx context.Context) ([]Extension, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// InstallationStore persists installations and their default profiles.
// CreateWithProfile is atomic: either both rows exist afterwards or neither
// does. SetToken is a compare-and-swap on the empty token column so concurrent
// callback deliveries serialize with exactly one winner.
type InstallationStore interface {
	CreateWithProfile(ctx context.Context, installation Installation, profile Profile) (Installation, Profile, error)
	Get(ctx context.Context, id string) (Installation, error)
	ListByAccount(ctx context.Context, accountID string) ([]Installation, error)
	ListByExtension(ctx context.Context, extensionID string) ([]Installation, error)
	SetToken(ctx context.Context, id string, token string) error
	UpdateStatus(ctx context.Context, id string, status InstallationStatus, reason string) error
	ListStale(ctx context.Context, statuses []InstallationStatus, before time.Time, limit int) ([]Installation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type ProfileStore interface {
	GetByInstallation(ctx context.Context, installationID string) (Profile, error)
	UpdateCredentials(ctx context.Context, in UpdateProfileCredentialsInput) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

// WebhookStore persists remote webhook registrations. CreateRegistration
// writes the registration row and transitions its installation to provisioned
// in one transaction; on failure neither change survives.
type WebhookStore interface {
	CreateRegistration(ctx context.Context, in CreateWebhookRegistrationInput) (WebhookRegistration, error)
	GetByInstallation(ctx context.Context, installationID string) (WebhookRegistration, error)
}

type ActionStore interface {
	Create(ctx context.Context, action Action) (Action, error)
	Get(ctx context.Context, id string) (Action, error)
	ListByInstallation(ctx context.Context, installationID string) ([]Action, error)
}

type StoreProvider interface {
	AccountStore() AccountStore
	ExtensionStore() ExtensionStore
	InstallationStore() InstallationStore
	ProfileStore() ProfileStore
	WebhookStore() WebhookStore
	ActionStore() ActionStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// ExchangeClient performs the outbound token flows against an extension's
// declared endpoints.
type ExchangeClient interface {
	ExchangeAuthorizationCode(ctx context.Context, req AuthorizationCodeRequest) (TokenResult, error)
	ClientCredentialsToken(ctx context.Context, req ClientCredentialsRequest) (TokenResult, error)
}

type AuthorizationCodeRequest struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

type ClientCredentialsRequest struct {
	TokenURL  string
	AppKey    string
	AppSecret string
}

type TokenResult struct {
	AccessToken string
}

// WebhookProvisioner registers an outgoing webhook with the remote service and
// returns the remote identifier plus signing secret.
type WebhookProvisioner interface {
	RegisterOutgoingWebhook(ctx context.Context, req RegisterWebhookRequest) (WebhookEndpoint, error)
}

type RegisterWebhookRequest struct {
	BaseURL     string
	AccessToken string
	Name        string
	CallbackURL string
}

type WebhookEndpoint struct {
	ID     string
	Secret string
}

// MessagePoster delivers an action's rendered message to the extension's
// message endpoint using the installation token.
type MessagePoster interface {
	Post(ctx context.Context, req PostMessageRequest) error
}

type PostMessageRequest struct {
	URL     string
	Token   string
	Payload map[string]any
}

type CreateAccountInput struct {
	Name        string
	DisplayName string
	URL         string
}

type CreateExtensionInput struct {
	Code             string
	Name             string
	Description      string
	AuthorizationURL string
	TokenURL         string
	MessageURL       string
	ClientID         string
	ClientSecret     string
	Scope            string
}

type UpdateProfileCredentialsInput struct {
	InstallationID string
	Name           string
	AppKey         string
	AppSecret      string
	TokenURL       string
}

type CreateWebhookRegistrationInput struct {
	InstallationID string
	RemoteID       string
	Secret         string
	CallbackURL    string
}

type StartInstallationRequest struct {
	AccountURL    string
	ExtensionCode string
}

type StartInstallationResult struct {
	Installation Installation
	Profile      Profile
	RedirectURL  string
	State        string
}

type CallbackRequest struct {
	ExtensionCode string
	Code          string
	State         string
}

type CallbackResult struct {
	Installation Installation
}

type RemoteAPIConfig struct {
	BaseURL   string
	TokenURL  string
	AppKey    string
	AppSecret string
}

type ProvisionWebhookRequest struct {
	InstallationID string
	ProfileName    string
	RemoteAPI      RemoteAPIConfig
}

type ProvisionWebhookResult struct {
	Registration WebhookRegistration
}

type DispatchActionRequest struct {
	ActionID string
	Payload  map[string]any
}

type ExpirySweepResult struct {
	Scanned int
	Expired int
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type CommandDispatcher interface {
	Dispatch(ctx context.Context, msg any) error
}

type InstallationService interface {
	StartInstallation(ctx context.Context, req StartInstallationRequest) (StartInstallationResult, error)
	HandleCallback(ctx context.Context, req CallbackRequest) (CallbackResult, error)
	ProvisionWebhook(ctx context.Context, req ProvisionWebhookRequest) (ProvisionWebhookResult, error)
}
