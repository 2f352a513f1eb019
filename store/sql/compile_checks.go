package sqlstore

import "github.com/goliatone/go-extensions/core"

var (
	_ core.AccountStore           = (*AccountStore)(nil)
	_ core.ExtensionStore         = (*ExtensionStore)(nil)
	_ core.InstallationStore      = (*InstallationStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
