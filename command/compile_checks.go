package command

import (
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[StartInstallationMessage] = (*StartInstallationCommand)(nil)
	_ gocmd.Commander[HandleCallbackMessage]    = (*HandleCallbackCommand)(nil)
	_ gocmd.Commander[ProvisionWebhookMessage]  = (*ProvisionWebhookCommand)(nil)
	_ gocmd.Commander[CreateAccountMessage]     = (*CreateAccountCommand)(nil)
	_ gocmd.Commander[DisableAccountMessage]    = (*DisableAccountCommand)(nil)
	_ gocmd.Commander[CreateExtensionMessage]   = (*CreateExtensionCommand)(nil)
	_ gocmd.Commander[CreateActionMessage]      = (*CreateActionCommand)(nil)
	_ gocmd.Commander[DispatchActionMessage]    = (*DispatchActionCommand)(nil)
	_ gocmd.Commander[RunExpirySweepMessage]    = (*RunExpirySweepCommand)(nil)
)
