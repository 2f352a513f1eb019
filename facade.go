package extensions

import (
	"fmt"
	"reflect"

	extensionscommand "github.com/goliatone/go-extensions/command"
	"github.com/goliatone/go-extensions/core"
	extensionsquery "github.com/goliatone/go-extensions/query"
)

// CommandQueryService is the surface the facade expects: every mutating
// operation plus the catalog and installation readers.
type CommandQueryService interface {
	extensionscommand.MutatingService
	extensionsquery.AccountReader
	extensionsquery.ExtensionReader
	extensionsquery.InstallationReader
	extensionsquery.ActionReader
}

type Commands struct {
	StartInstallation *extensionscommand.StartInstallationCommand
	HandleCallback    *extensionscommand.HandleCallbackCommand
	ProvisionWebhook  *extensionscommand.ProvisionWebhookCommand
	CreateAccount     *extensionscommand.CreateAccountCommand
	DisableAccount    *extensionscommand.DisableAccountCommand
	CreateExtension   *extensionscommand.CreateExtensionCommand
	CreateAction      *extensionscommand.CreateActionCommand
	DispatchAction    *extensionscommand.DispatchActionCommand
	RunExpirySweep    *extensionscommand.RunExpirySweepCommand
}

type Queries struct {
	GetAccount          *extensionsquery.GetAccountQuery
	ListAccounts        *extensionsquery.ListAccountsQuery
	GetExtension        *extensionsquery.GetExtensionQuery
	ListExtensions      *extensionsquery.ListExtensionsQuery
	AvailableExtensions *extensionsquery.AvailableExtensionsQuery
	GetInstallation     *extensionsquery.GetInstallationQuery
	ListInstallations   *extensionsquery.ListInstallationsQuery
	ListActions         *extensionsquery.ListActionsQuery
	GetWebhook          *extensionsquery.GetWebhookQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	webhookReader extensionsquery.WebhookReader
}

func WithWebhookReader(reader extensionsquery.WebhookReader) FacadeOption {
	return func(options *facadeOptions) {
		options.webhookReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("extensions: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.webhookReader
	if reader == nil {
		reader = resolveWebhookReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		StartInstallation: extensionscommand.NewStartInstallationCommand(service),
		HandleCallback:    extensionscommand.NewHandleCallbackCommand(service),
		ProvisionWebhook:  extensionscommand.NewProvisionWebhookCommand(service),
		CreateAccount:     extensionscommand.NewCreateAccountCommand(service),
		DisableAccount:    extensionscommand.NewDisableAccountCommand(service),
		CreateExtension:   extensionscommand.NewCreateExtensionCommand(service),
		CreateAction:      extensionscommand.NewCreateActionCommand(service),
		DispatchAction:    extensionscommand.NewDispatchActionCommand(service),
		RunExpirySweep:    extensionscommand.NewRunExpirySweepCommand(service),
	}
	facade.queries = Queries{
		GetAccount:          extensionsquery.NewGetAccountQuery(service),
		ListAccounts:        extensionsquery.NewListAccountsQuery(service),
		GetExtension:        extensionsquery.NewGetExtensionQuery(service),
		ListExtensions:      extensionsquery.NewListExtensionsQuery(service),
		AvailableExtensions: extensionsquery.NewAvailableExtensionsQuery(service),
		GetInstallation:     extensionsquery.NewGetInstallationQuery(service),
		ListInstallations:   extensionsquery.NewListInstallationsQuery(service),
		ListActions:         extensionsquery.NewListActionsQuery(service),
		GetWebhook:          extensionsquery.NewGetWebhookQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveWebhookReader looks for a webhook registration reader on the
// service itself, its wired webhook store, or its repository factory.
func resolveWebhookReader(service CommandQueryService) extensionsquery.WebhookReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(extensionsquery.WebhookReader); ok {
		return reader
	}
	provider, ok := service.(interface {
		Dependencies() core.ServiceDependencies
	})
	if !ok {
		return nil
	}
	deps := provider.Dependencies()
	if deps.WebhookStore != nil {
		return deps.WebhookStore
	}
	if deps.RepositoryFactory == nil {
		return nil
	}

	factoryValue := reflect.ValueOf(deps.RepositoryFactory)
	if !factoryValue.IsValid() {
		return nil
	}
	if factoryValue.Kind() == reflect.Ptr && factoryValue.IsNil() {
		return nil
	}
	method := factoryValue.MethodByName("WebhookStore")
	if !method.IsValid() || method.Type().NumIn() != 0 || method.Type().NumOut() != 1 {
		return nil
	}

	results, ok := safeReflectCall(method)
	if !ok {
		return nil
	}
	if len(results) != 1 {
		return nil
	}
	candidate := results[0]
	if !candidate.IsValid() {
		return nil
	}
	if candidate.Kind() == reflect.Ptr && candidate.IsNil() {
		return nil
	}
	reader, ok := candidate.Interface().(extensionsquery.WebhookReader)
	if !ok {
		return nil
	}
	return reader
}

func safeReflectCall(method reflect.Value) (_ []reflect.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return method.Call(nil), true
}
