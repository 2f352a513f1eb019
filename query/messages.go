package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetAccount          = "extensions.query.account.get"
	TypeListAccounts        = "extensions.query.account.list"
	TypeGetExtension        = "extensions.query.extension.get"
	TypeListExtensions      = "extensions.query.extension.list"
	TypeAvailableExtensions = "extensions.query.extension.available"
	TypeGetInstallation     = "extensions.query.installation.get"
	TypeListInstallations   = "extensions.query.installation.list"
	TypeListActions         = "extensions.query.action.list"
	TypeGetWebhook          = "extensions.query.webhook.get"
)

type GetAccountMessage struct {
	AccountURL string
}

func (GetAccountMessage) Type() string { return TypeGetAccount }

func (m GetAccountMessage) Validate() error {
	if strings.TrimSpace(m.AccountURL) == "" {
		return fmt.Errorf("query: account url is required")
	}
	return nil
}

type ListAccountsMessage struct{}

func (ListAccountsMessage) Type() string { return TypeListAccounts }

func (ListAccountsMessage) Validate() error { return nil }

type GetExtensionMessage struct {
	Code string
}

func (GetExtensionMessage) Type() string { return TypeGetExtension }

func (m GetExtensionMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return fmt.Errorf("query: extension code is required")
	}
	return nil
}

type ListExtensionsMessage struct{}

func (ListExtensionsMessage) Type() string { return TypeListExtensions }

func (ListExtensionsMessage) Validate() error { return nil }

type AvailableExtensionsMessage struct {
	AccountURL string
}

func (AvailableExtensionsMessage) Type() string { return TypeAvailableExtensions }

func (m AvailableExtensionsMessage) Validate() error {
	if strings.TrimSpace(m.AccountURL) == "" {
		return fmt.Errorf("query: account url is required")
	}
	return nil
}

type GetInstallationMessage struct {
	InstallationID string
}

func (GetInstallationMessage) Type() string { return TypeGetInstallation }

func (m GetInstallationMessage) Validate() error {
	if strings.TrimSpace(m.InstallationID) == "" {
		return fmt.Errorf("query: installation id is required")
	}
	return nil
}

type ListInstallationsMessage struct {
	AccountURL string
}

func (ListInstallationsMessage) Type() string { return TypeListInstallations }

func (m ListInstallationsMessage) Validate() error {
	if strings.TrimSpace(m.AccountURL) == "" {
		return fmt.Errorf("query: account url is required")
	}
	return nil
}

type ListActionsMessage struct {
	InstallationID string
}

func (ListActionsMessage) Type() string { return TypeListActions }

func (m ListActionsMessage) Validate() error {
	if strings.TrimSpace(m.InstallationID) == "" {
		return fmt.Errorf("query: installation id is required")
	}
	return nil
}

type GetWebhookMessage struct {
	InstallationID string
}

func (GetWebhookMessage) Type() string { return TypeGetWebhook }

func (m GetWebhookMessage) Validate() error {
	if strings.TrimSpace(m.InstallationID) == "" {
		return fmt.Errorf("query: installation id is required")
	}
	return nil
}
