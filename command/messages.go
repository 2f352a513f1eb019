package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-extensions/core"
)

const (
	TypeStartInstallation = "extensions.command.install.start"
	TypeHandleCallback    = "extensions.command.callback.handle"
	TypeProvisionWebhook  = "extensions.command.webhook.provision"
	TypeCreateAccount     = "extensions.command.account.create"
	TypeDisableAccount    = "extensions.command.account.disable"
	TypeCreateExtension   = "extensions.command.extension.create"
	TypeCreateAction      = "extensions.command.action.create"
	TypeDispatchAction    = "extensions.command.action.dispatch"
	TypeRunExpirySweep    = "extensions.command.install.expire_sweep"
)

type StartInstallationMessage struct {
	Request core.StartInstallationRequest
}

func (StartInstallationMessage) Type() string { return TypeStartInstallation }

func (m StartInstallationMessage) Validate() error {
	if strings.TrimSpace(m.Request.AccountURL) == "" {
		return fmt.Errorf("command: account url is required")
	}
	if strings.TrimSpace(m.Request.ExtensionCode) == "" {
		return fmt.Errorf("command: extension code is required")
	}
	return nil
}

type HandleCallbackMessage struct {
	Request core.CallbackRequest
}

func (HandleCallbackMessage) Type() string { return TypeHandleCallback }

func (m HandleCallbackMessage) Validate() error {
	if strings.TrimSpace(m.Request.Code) == "" {
		return fmt.Errorf("command: authorization code is required")
	}
	if strings.TrimSpace(m.Request.State) == "" {
		return fmt.Errorf("command: state is required")
	}
	return nil
}

type ProvisionWebhookMessage struct {
	Request core.ProvisionWebhookRequest
}

func (ProvisionWebhookMessage) Type() string { return TypeProvisionWebhook }

func (m ProvisionWebhookMessage) Validate() error {
	if strings.TrimSpace(m.Request.InstallationID) == "" {
		return fmt.Errorf("command: installation id is required")
	}
	if strings.TrimSpace(m.Request.ProfileName) == "" {
		return fmt.Errorf("command: profile name is required")
	}
	if strings.TrimSpace(m.Request.RemoteAPI.BaseURL) == "" {
		return fmt.Errorf("command: remote api base url is required")
	}
	if strings.TrimSpace(m.Request.RemoteAPI.TokenURL) == "" {
		return fmt.Errorf("command: remote api token url is required")
	}
	return nil
}

type CreateAccountMessage struct {
	Input core.CreateAccountInput
}

func (CreateAccountMessage) Type() string { return TypeCreateAccount }

func (m CreateAccountMessage) Validate() error {
	if strings.TrimSpace(m.Input.Name) == "" {
		return fmt.Errorf("command: account name is required")
	}
	if strings.TrimSpace(m.Input.URL) == "" {
		return fmt.Errorf("command: account url is required")
	}
	return nil
}

type DisableAccountMessage struct {
	AccountID string
}

func (DisableAccountMessage) Type() string { return TypeDisableAccount }

func (m DisableAccountMessage) Validate() error {
	if strings.TrimSpace(m.AccountID) == "" {
		return fmt.Errorf("command: account id is required")
	}
	return nil
}

type CreateExtensionMessage struct {
	Input core.CreateExtensionInput
}

func (CreateExtensionMessage) Type() string { return TypeCreateExtension }

func (m CreateExtensionMessage) Validate() error {
	if strings.TrimSpace(m.Input.Name) == "" {
		return fmt.Errorf("command: extension name is required")
	}
	if strings.TrimSpace(m.Input.AuthorizationURL) == "" {
		return fmt.Errorf("command: authorization url is required")
	}
	if strings.TrimSpace(m.Input.TokenURL) == "" {
		return fmt.Errorf("command: token url is required")
	}
	if strings.TrimSpace(m.Input.ClientID) == "" {
		return fmt.Errorf("command: client id is required")
	}
	return nil
}

type CreateActionMessage struct {
	Action core.Action
}

func (CreateActionMessage) Type() string { return TypeCreateAction }

func (m CreateActionMessage) Validate() error {
	if err := m.Action.Validate(); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

type DispatchActionMessage struct {
	Request core.DispatchActionRequest
}

func (DispatchActionMessage) Type() string { return TypeDispatchAction }

func (m DispatchActionMessage) Validate() error {
	if strings.TrimSpace(m.Request.ActionID) == "" {
		return fmt.Errorf("command: action id is required")
	}
	return nil
}

type RunExpirySweepMessage struct {
	Options core.ExpirySweepOptions
}

func (RunExpirySweepMessage) Type() string { return TypeRunExpirySweep }

func (m RunExpirySweepMessage) Validate() error {
	if m.Options.PendingTTL < 0 {
		return fmt.Errorf("command: pending ttl must not be negative")
	}
	if m.Options.Limit < 0 {
		return fmt.Errorf("command: sweep limit must not be negative")
	}
	return nil
}
