package core

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service coordinates the install -> authorize -> exchange -> provision
// workflow. It is stateless: every call resolves its entities through the
// injected stores and holds no per-request fields.
type Service struct {
	config            Config
	logger            Logger
	loggerProvider    LoggerProvider
	metricsRecorder   MetricsRecorder
	errorFactory      ErrorFactory
	errorMapper       ErrorMapper
	persistenceClient any
	repositoryFactory any
	configProvider    ConfigProvider
	optionsResolver   OptionsResolver
	oauthStateStore   OAuthStateStore
	exchangeClient    ExchangeClient
	provisioner       WebhookProvisioner
	messagePoster     MessagePoster
	accountStore      AccountStore
	extensionStore    ExtensionStore
	installationStore InstallationStore
	profileStore      ProfileStore
	webhookStore      WebhookStore
	actionStore       ActionStore
}

type ServiceDependencies struct {
	Logger            Logger
	LoggerProvider    LoggerProvider
	MetricsRecorder   MetricsRecorder
	ErrorFactory      ErrorFactory
	ErrorMapper       ErrorMapper
	PersistenceClient any
	RepositoryFactory any
	ConfigProvider    ConfigProvider
	OptionsResolver   OptionsResolver
	OAuthStateStore   OAuthStateStore
	ExchangeClient    ExchangeClient
	Provisioner       WebhookProvisioner
	MessagePoster     MessagePoster
	AccountStore      AccountStore
	ExtensionStore    ExtensionStore
	InstallationStore InstallationStore
	ProfileStore      ProfileStore
	WebhookStore      WebhookStore
	ActionStore       ActionStore
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("extensions", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("extensions"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.oauthStateStore == nil {
		builder.oauthStateStore = NewMemoryOAuthStateStore(finalConfig.OAuth.StateTTL)
	}

	if builder.installationStore == nil && builder.repositoryFactory != nil {
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			storeProvider, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			if storeProvider != nil {
				if builder.accountStore == nil {
					builder.accountStore = storeProvider.AccountStore()
				}
				if builder.extensionStore == nil {
					builder.extensionStore = storeProvider.ExtensionStore()
				}
				if builder.installationStore == nil {
					builder.installationStore = storeProvider.InstallationStore()
				}
				if builder.profileStore == nil {
					builder.profileStore = storeProvider.ProfileStore()
				}
				if builder.webhookStore == nil {
					builder.webhookStore = storeProvider.WebhookStore()
				}
				if builder.actionStore == nil {
					builder.actionStore = storeProvider.ActionStore()
				}
			}
		}
	}

	return &Service{
		config:            finalConfig,
		logger:            logger,
		loggerProvider:    provider,
		metricsRecorder:   builder.metricsRecorder,
		errorFactory:      builder.errorFactory,
		errorMapper:       builder.errorMapper,
		persistenceClient: builder.persistenceClient,
		repositoryFactory: builder.repositoryFactory,
		configProvider:    builder.configProvider,
		optionsResolver:   builder.optionsResolver,
		oauthStateStore:   builder.oauthStateStore,
		exchangeClient:    builder.exchangeClient,
		provisioner:       builder.provisioner,
		messagePoster:     builder.messagePoster,
		accountStore:      builder.accountStore,
		extensionStore:    builder.extensionStore,
		installationStore: builder.installationStore,
		profileStore:      builder.profileStore,
		webhookStore:      builder.webhookStore,
		actionStore:       builder.actionStore,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:            s.logger,
		LoggerProvider:    s.loggerProvider,
		MetricsRecorder:   s.metricsRecorder,
		ErrorFactory:      s.errorFactory,
		ErrorMapper:       s.errorMapper,
		PersistenceClient: s.persistenceClient,
		RepositoryFactory: s.repositoryFactory,
		ConfigProvider:    s.configProvider,
		OptionsResolver:   s.optionsResolver,
		OAuthStateStore:   s.oauthStateStore,
		ExchangeClient:    s.exchangeClient,
		Provisioner:       s.provisioner,
		MessagePoster:     s.messagePoster,
		AccountStore:      s.accountStore,
		ExtensionStore:    s.extensionStore,
		InstallationStore: s.installationStore,
		ProfileStore:      s.profileStore,
		WebhookStore:      s.webhookStore,
		ActionStore:       s.actionStore,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (s *Service) codeMaxAttempts() int {
	if s == nil || s.config.Install.CodeMaxAttempts < 1 {
		return defaultCodeMaxAttempts
	}
	return s.config.Install.CodeMaxAttempts
}

func (s *Service) resolveAccountByURL(ctx context.Context, accountURL string) (Account, error) {
	if s.accountStore == nil {
		return Account{}, fmt.Errorf("core: account store is required")
	}
	accountURL = strings.TrimSpace(accountURL)
	if accountURL == "" {
		return Account{}, fmt.Errorf("%w: account url is required", ErrInvalidRequest)
	}
	account, err := s.accountStore.GetByURL(ctx, accountURL)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (s *Service) resolveExtensionByCode(ctx context.Context, code string) (Extension, error) {
	if s.extensionStore == nil {
		return Extension{}, fmt.Errorf("core: extension store is required")
	}
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return Extension{}, fmt.Errorf("%w: extension code is required", ErrInvalidRequest)
	}
	extension, err := s.extensionStore.GetByCode(ctx, code)
	if err != nil {
		return Extension{}, err
	}
	return extension, nil
}

var _ InstallationService = (*Service)(nil)
