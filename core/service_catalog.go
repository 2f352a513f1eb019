package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (account Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"account_url": in.URL}
	defer func() {
		if account.ID != "" {
			fields["account_id"] = account.ID
		}
		s.observeOperation(ctx, startedAt, "create_account", err, fields)
	}()

	if s.accountStore == nil {
		err = s.mapError(fmt.Errorf("core: account store is required"))
		return Account{}, err
	}
	candidate := Account{Name: in.Name, DisplayName: in.DisplayName, URL: in.URL}
	if err = candidate.Validate(); err != nil {
		err = s.mapError(err)
		return Account{}, err
	}
	account, err = s.accountStore.Create(ctx, in)
	if err != nil {
		err = s.mapError(err)
		return Account{}, err
	}
	return account, nil
}

func (s *Service) GetAccountByURL(ctx context.Context, accountURL string) (Account, error) {
	account, err := s.resolveAccountByURL(ctx, accountURL)
	if err != nil {
		return Account{}, s.mapError(err)
	}
	return account, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	if s.accountStore == nil {
		return nil, s.mapError(fmt.Errorf("core: account store is required"))
	}
	accounts, err := s.accountStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return accounts, nil
}

func (s *Service) DisableAccount(ctx context.Context, accountID string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"account_id": accountID}
	defer func() {
		s.observeOperation(ctx, startedAt, "disable_account", err, fields)
	}()

	if s.accountStore == nil {
		err = s.mapError(fmt.Errorf("core: account store is required"))
		return err
	}
	if strings.TrimSpace(accountID) == "" {
		err = s.mapError(fmt.Errorf("%w: account id is required", ErrInvalidRequest))
		return err
	}
	if err = s.accountStore.SetDisabled(ctx, accountID, true); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

func (s *Service) CreateExtension(ctx context.Context, in CreateExtensionInput) (extension Extension, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"extension_code": in.Code}
	defer func() {
		if extension.ID != "" {
			fields["extension_id"] = extension.ID
		}
		s.observeOperation(ctx, startedAt, "create_extension", err, fields)
	}()

	if s.extensionStore == nil {
		err = s.mapError(fmt.Errorf("core: extension store is required"))
		return Extension{}, err
	}
	candidate := Extension{
		Name:             in.Name,
		AuthorizationURL: in.AuthorizationURL,
		TokenURL:         in.TokenURL,
		ClientID:         in.ClientID,
	}
	if err = candidate.Validate(); err != nil {
		err = s.mapError(err)
		return Extension{}, err
	}

	in.Code = strings.TrimSpace(strings.ToLower(in.Code))
	if in.Code == "" {
		in.Code, err = generateWithRetry(s.codeMaxAttempts(), func(code string) (bool, error) {
			return s.extensionStore.CodeExists(ctx, code)
		})
		if err != nil {
			err = s.mapError(err)
			return Extension{}, err
		}
	}
	fields["extension_code"] = in.Code

	extension, err = s.extensionStore.Create(ctx, in)
	if err != nil {
		err = s.mapError(err)
		return Extension{}, err
	}
	return extension, nil
}

func (s *Service) GetExtensionByCode(ctx context.Context, code string) (Extension, error) {
	extension, err := s.resolveExtensionByCode(ctx, code)
	if err != nil {
		return Extension{}, s.mapError(err)
	}
	return extension, nil
}

func (s *Service) ListExtensions(ctx context.Context) ([]Extension, error) {
	if s.extensionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: extension store is required"))
	}
	extensions, err := s.extensionStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return extensions, nil
}

// AvailableExtensions lists the catalog minus the extensions the account has
// already installed, regardless of those installations' statuses.
func (s *Service) AvailableExtensions(ctx context.Context, accountURL string) ([]Extension, error) {
	if s.extensionStore == nil || s.installationStore == nil {
		return nil, s.mapError(fmt.Errorf("core: extension and installation stores are required"))
	}
	account, err := s.resolveAccountByURL(ctx, accountURL)
	if err != nil {
		return nil, s.mapError(err)
	}
	extensions, err := s.extensionStore.List(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	installations, err := s.installationStore.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, s.mapError(err)
	}

	installed := make(map[string]struct{}, len(installations))
	for _, installation := range installations {
		installed[installation.ExtensionID] = struct{}{}
	}
	available := make([]Extension, 0, len(extensions))
	for _, extension := range extensions {
		if _, taken := installed[extension.ID]; taken {
			continue
		}
		available = append(available, extension)
	}
	return available, nil
}

func (s *Service) GetInstallation(ctx context.Context, installationID string) (Installation, error) {
	if s.installationStore == nil {
		return Installation{}, s.mapError(fmt.Errorf("core: installation store is required"))
	}
	if strings.TrimSpace(installationID) == "" {
		return Installation{}, s.mapError(fmt.Errorf("%w: installation id is required", ErrInvalidRequest))
	}
	installation, err := s.installationStore.Get(ctx, installationID)
	if err != nil {
		return Installation{}, s.mapError(err)
	}
	return installation, nil
}

func (s *Service) ListInstallations(ctx context.Context, accountURL string) ([]Installation, error) {
	if s.installationStore == nil {
		return nil, s.mapError(fmt.Errorf("core: installation store is required"))
	}
	account, err := s.resolveAccountByURL(ctx, accountURL)
	if err != nil {
		return nil, s.mapError(err)
	}
	installations, err := s.installationStore.ListByAccount(ctx, account.ID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return installations, nil
}
