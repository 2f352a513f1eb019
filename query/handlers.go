package query

import (
	"context"

	"github.com/goliatone/go-extensions/core"
)

type AccountReader interface {
	GetAccountByURL(ctx context.Context, accountURL string) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
}

type ExtensionReader interface {
	GetExtensionByCode(ctx context.Context, code string) (core.Extension, error)
	ListExtensions(ctx context.Context) ([]core.Extension, error)
	AvailableExtensions(ctx context.Context, accountURL string) ([]core.Extension, error)
}

type InstallationReader interface {
	GetInstallation(ctx context.Context, id string) (core.Installation, error)
	ListInstallations(ctx context.Context, accountURL string) ([]core.Installation, error)
}

type ActionReader interface {
	ListActions(ctx context.Context, installationID string) ([]core.Action, error)
}

type WebhookReader interface {
	GetByInstallation(ctx context.Context, installationID string) (core.WebhookRegistration, error)
}

type GetAccountQuery struct {
	reader AccountReader
}

func NewGetAccountQuery(reader AccountReader) *GetAccountQuery {
	return &GetAccountQuery{reader: reader}
}

func (q *GetAccountQuery) Query(ctx context.Context, msg GetAccountMessage) (core.Account, error) {
	if q == nil || q.reader == nil {
		return core.Account{}, queryDependencyError("query: account reader is required")
	}
	return q.reader.GetAccountByURL(ctx, msg.AccountURL)
}

type ListAccountsQuery struct {
	reader AccountReader
}

func NewListAccountsQuery(reader AccountReader) *ListAccountsQuery {
	return &ListAccountsQuery{reader: reader}
}

func (q *ListAccountsQuery) Query(ctx context.Context, msg ListAccountsMessage) ([]core.Account, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: account reader is required")
	}
	return q.reader.ListAccounts(ctx)
}

type GetExtensionQuery struct {
	reader ExtensionReader
}

func NewGetExtensionQuery(reader ExtensionReader) *GetExtensionQuery {
	return &GetExtensionQuery{reader: reader}
}

func (q *GetExtensionQuery) Query(ctx context.Context, msg GetExtensionMessage) (core.Extension, error) {
	if q == nil || q.reader == nil {
		return core.Extension{}, queryDependencyError("query: extension reader is required")
	}
	return q.reader.GetExtensionByCode(ctx, msg.Code)
}

type ListExtensionsQuery struct {
	reader ExtensionReader
}

func NewListExtensionsQuery(reader ExtensionReader) *ListExtensionsQuery {
	return &ListExtensionsQuery{reader: reader}
}

func (q *ListExtensionsQuery) Query(ctx context.Context, msg ListExtensionsMessage) ([]core.Extension, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: extension reader is required")
	}
	return q.reader.ListExtensions(ctx)
}

type AvailableExtensionsQuery struct {
	reader ExtensionReader
}

func NewAvailableExtensionsQuery(reader ExtensionReader) *AvailableExtensionsQuery {
	return &AvailableExtensionsQuery{reader: reader}
}

func (q *AvailableExtensionsQuery) Query(
	ctx context.Context,
	msg AvailableExtensionsMessage,
) ([]core.Extension, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: extension reader is required")
	}
	return q.reader.AvailableExtensions(ctx, msg.AccountURL)
}

type GetInstallationQuery struct {
	reader InstallationReader
}

func NewGetInstallationQuery(reader InstallationReader) *GetInstallationQuery {
	return &GetInstallationQuery{reader: reader}
}

func (q *GetInstallationQuery) Query(ctx context.Context, msg GetInstallationMessage) (core.Installation, error) {
	if q == nil || q.reader == nil {
		return core.Installation{}, queryDependencyError("query: installation reader is required")
	}
	return q.reader.GetInstallation(ctx, msg.InstallationID)
}

type ListInstallationsQuery struct {
	reader InstallationReader
}

func NewListInstallationsQuery(reader InstallationReader) *ListInstallationsQuery {
	return &ListInstallationsQuery{reader: reader}
}

func (q *ListInstallationsQuery) Query(
	ctx context.Context,
	msg ListInstallationsMessage,
) ([]core.Installation, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: installation reader is required")
	}
	return q.reader.ListInstallations(ctx, msg.AccountURL)
}

type ListActionsQuery struct {
	reader ActionReader
}

func NewListActionsQuery(reader ActionReader) *ListActionsQuery {
	return &ListActionsQuery{reader: reader}
}

func (q *ListActionsQuery) Query(ctx context.Context, msg ListActionsMessage) ([]core.Action, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: action reader is required")
	}
	return q.reader.ListActions(ctx, msg.InstallationID)
}

type GetWebhookQuery struct {
	reader WebhookReader
}

func NewGetWebhookQuery(reader WebhookReader) *GetWebhookQuery {
	return &GetWebhookQuery{reader: reader}
}

func (q *GetWebhookQuery) Query(ctx context.Context, msg GetWebhookMessage) (core.WebhookRegistration, error) {
	if q == nil || q.reader == nil {
		return core.WebhookRegistration{}, queryDependencyError("query: webhook reader is required")
	}
	return q.reader.GetByInstallation(ctx, msg.InstallationID)
}
