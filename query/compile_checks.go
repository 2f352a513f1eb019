package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-extensions/core"
)

var (
	_ gocmd.Querier[GetAccountMessage, core.Account]               = (*GetAccountQuery)(nil)
	_ gocmd.Querier[ListAccountsMessage, []core.Account]           = (*ListAccountsQuery)(nil)
	_ gocmd.Querier[GetExtensionMessage, core.Extension]           = (*GetExtensionQuery)(nil)
	_ gocmd.Querier[ListExtensionsMessage, []core.Extension]       = (*ListExtensionsQuery)(nil)
	_ gocmd.Querier[AvailableExtensionsMessage, []core.Extension]  = (*AvailableExtensionsQuery)(nil)
	_ gocmd.Querier[GetInstallationMessage, core.Installation]     = (*GetInstallationQuery)(nil)
	_ gocmd.Querier[ListInstallationsMessage, []core.Installation] = (*ListInstallationsQuery)(nil)
	_ gocmd.Querier[ListActionsMessage, []core.Action]             = (*ListActionsQuery)(nil)
	_ gocmd.Querier[GetWebhookMessage, core.WebhookRegistration]   = (*GetWebhookQuery)(nil)
)
