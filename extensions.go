package extensions

import "github.com/goliatone/go-extensions/core"

type Config = core.Config

type OAuthConfig = core.OAuthConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type OAuthStateStore = core.OAuthStateStore
type AccountStore = core.AccountStore
type ExtensionStore = core.ExtensionStore
type InstallationStore = core.InstallationStore
type ProfileStore = core.ProfileStore
type WebhookStore = core.WebhookStore
type ActionStore = core.ActionStore
type ExchangeClient = core.ExchangeClient
type WebhookProvisioner = core.WebhookProvisioner
type MessagePoster = core.MessagePoster

type Account = core.Account
type Extension = core.Extension
type Installation = core.Installation
type Profile = core.Profile
type WebhookRegistration = core.WebhookRegistration
type Action = core.Action
type InstallationStatus = core.InstallationStatus

type StartInstallationRequest = core.StartInstallationRequest
type StartInstallationResult = core.StartInstallationResult

type CallbackRequest = core.CallbackRequest
type CallbackResult = core.CallbackResult

type ProvisionWebhookRequest = core.ProvisionWebhookRequest
type ProvisionWebhookResult = core.ProvisionWebhookResult

type DispatchActionRequest = core.DispatchActionRequest

type ExpirySweepOptions = core.ExpirySweepOptions
type ExpirySweepResult = core.ExpirySweepResult

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithOAuthStateStore    = core.WithOAuthStateStore
	WithExchangeClient     = core.WithExchangeClient
	WithWebhookProvisioner = core.WithWebhookProvisioner
	WithMessagePoster      = core.WithMessagePoster
	WithAccountStore       = core.WithAccountStore
	WithExtensionStore     = core.WithExtensionStore
	WithInstallationStore  = core.WithInstallationStore
	WithProfileStore       = core.WithProfileStore
	WithWebhookStore       = core.WithWebhookStore
	WithActionStore        = core.WithActionStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
