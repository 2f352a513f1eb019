package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-extensions/core"
)

type MutatingService interface {
	StartInstallation(ctx context.Context, req core.StartInstallationRequest) (core.StartInstallationResult, error)
	HandleCallback(ctx context.Context, req core.CallbackRequest) (core.CallbackResult, error)
	ProvisionWebhook(ctx context.Context, req core.ProvisionWebhookRequest) (core.ProvisionWebhookResult, error)
	CreateAccount(ctx context.Context, in core.CreateAccountInput) (core.Account, error)
	DisableAccount(ctx context.Context, accountID string) error
	CreateExtension(ctx context.Context, in core.CreateExtensionInput) (core.Extension, error)
	CreateAction(ctx context.Context, action core.Action) (core.Action, error)
	DispatchAction(ctx context.Context, req core.DispatchActionRequest) error
	RunExpirySweep(ctx context.Context, opts core.ExpirySweepOptions) (core.ExpirySweepResult, error)
}

type StartInstallationCommand struct {
	service MutatingService
}

func NewStartInstallationCommand(service MutatingService) *StartInstallationCommand {
	return &StartInstallationCommand{service: service}
}

func (c *StartInstallationCommand) Execute(ctx context.Context, msg StartInstallationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: installation service is required")
	}
	out, err := c.service.StartInstallation(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type HandleCallbackCommand struct {
	service MutatingService
}

func NewHandleCallbackCommand(service MutatingService) *HandleCallbackCommand {
	return &HandleCallbackCommand{service: service}
}

func (c *HandleCallbackCommand) Execute(ctx context.Context, msg HandleCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	out, err := c.service.HandleCallback(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ProvisionWebhookCommand struct {
	service MutatingService
}

func NewProvisionWebhookCommand(service MutatingService) *ProvisionWebhookCommand {
	return &ProvisionWebhookCommand{service: service}
}

func (c *ProvisionWebhookCommand) Execute(ctx context.Context, msg ProvisionWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	out, err := c.service.ProvisionWebhook(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateAccountCommand struct {
	service MutatingService
}

func NewCreateAccountCommand(service MutatingService) *CreateAccountCommand {
	return &CreateAccountCommand{service: service}
}

func (c *CreateAccountCommand) Execute(ctx context.Context, msg CreateAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account service is required")
	}
	out, err := c.service.CreateAccount(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DisableAccountCommand struct {
	service MutatingService
}

func NewDisableAccountCommand(service MutatingService) *DisableAccountCommand {
	return &DisableAccountCommand{service: service}
}

func (c *DisableAccountCommand) Execute(ctx context.Context, msg DisableAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: account service is required")
	}
	return c.service.DisableAccount(ctx, msg.AccountID)
}

type CreateExtensionCommand struct {
	service MutatingService
}

func NewCreateExtensionCommand(service MutatingService) *CreateExtensionCommand {
	return &CreateExtensionCommand{service: service}
}

func (c *CreateExtensionCommand) Execute(ctx context.Context, msg CreateExtensionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: extension service is required")
	}
	out, err := c.service.CreateExtension(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateActionCommand struct {
	service MutatingService
}

func NewCreateActionCommand(service MutatingService) *CreateActionCommand {
	return &CreateActionCommand{service: service}
}

func (c *CreateActionCommand) Execute(ctx context.Context, msg CreateActionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: action service is required")
	}
	out, err := c.service.CreateAction(ctx, msg.Action)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DispatchActionCommand struct {
	service MutatingService
}

func NewDispatchActionCommand(service MutatingService) *DispatchActionCommand {
	return &DispatchActionCommand{service: service}
}

func (c *DispatchActionCommand) Execute(ctx context.Context, msg DispatchActionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: action service is required")
	}
	return c.service.DispatchAction(ctx, msg.Request)
}

type RunExpirySweepCommand struct {
	service MutatingService
}

func NewRunExpirySweepCommand(service MutatingService) *RunExpirySweepCommand {
	return &RunExpirySweepCommand{service: service}
}

func (c *RunExpirySweepCommand) Execute(ctx context.Context, msg RunExpirySweepMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: expiry sweep service is required")
	}
	out, err := c.service.RunExpirySweep(ctx, msg.Options)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
