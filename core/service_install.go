package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StartInstallation creates the installation and its default profile in one
// atomic write, then hands back the authorization redirect target carrying a
// single-use state token.
func (s *Service) StartInstallation(ctx context.Context, req StartInstallationRequest) (result StartInstallationResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"account_url":    req.AccountURL,
		"extension_code": req.ExtensionCode,
	}
	defer func() {
		if result.Installation.ID != "" {
			fields["installation_id"] = result.Installation.ID
			fields["installation_code"] = result.Installation.Code
		}
		s.observeOperation(ctx, startedAt, "start_installation", err, fields)
	}()

	if s.installationStore == nil {
		err = s.mapError(fmt.Errorf("core: installation store is required"))
		return StartInstallationResult{}, err
	}

	account, err := s.resolveAccountByURL(ctx, req.AccountURL)
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}
	if account.Disabled {
		err = s.mapError(fmt.Errorf("%w: account %s", ErrAccountDisabled, account.ID))
		return StartInstallationResult{}, err
	}
	fields["account_id"] = account.ID

	extension, err := s.resolveExtensionByCode(ctx, req.ExtensionCode)
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}

	installationCode, err := generateWithRetry(s.codeMaxAttempts(), func(code string) (bool, error) {
		return s.installationStore.CodeExists(ctx, code)
	})
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}

	profileCode := installationCode
	if s.profileStore != nil {
		profileCode, err = generateWithRetry(s.codeMaxAttempts(), func(code string) (bool, error) {
			return s.profileStore.CodeExists(ctx, code)
		})
		if err != nil {
			err = s.mapError(err)
			return StartInstallationResult{}, err
		}
	}

	now := time.Now().UTC()
	installation := Installation{
		ID:          uuid.NewString(),
		Code:        installationCode,
		AccountID:   account.ID,
		ExtensionID: extension.ID,
		Status:      InstallationStatusPendingAuth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = installation.TransitionTo(InstallationStatusAuthRedirected, "", now); err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}
	profile := Profile{
		ID:             uuid.NewString(),
		InstallationID: installation.ID,
		Code:           profileCode,
		Name:           extension.Name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	installation, profile, err = s.installationStore.CreateWithProfile(ctx, installation, profile)
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}

	state, err := generateOAuthState()
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}

	redirectURI := s.callbackURL(extension.Code)
	if s.oauthStateStore != nil {
		saveErr := s.oauthStateStore.Save(ctx, OAuthStateRecord{
			State:          state,
			ExtensionCode:  extension.Code,
			InstallationID: installation.ID,
			RedirectURI:    redirectURI,
			CreatedAt:      now,
		})
		if saveErr != nil {
			err = s.mapError(saveErr)
			return StartInstallationResult{}, err
		}
	}

	redirectURL, err := buildAuthorizationURL(extension, redirectURI, state)
	if err != nil {
		err = s.mapError(err)
		return StartInstallationResult{}, err
	}

	return StartInstallationResult{
		Installation: installation,
		Profile:      profile,
		RedirectURL:  redirectURL,
		State:        state,
	}, nil
}

// HandleCallback consumes the state token, exchanges the authorization code,
// and writes the access token with a compare-and-swap on the empty token
// column. Concurrent deliveries of the same callback lose either on state
// consumption or on the token write; neither path overwrites a stored token.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest) (result CallbackResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"extension_code": req.ExtensionCode,
	}
	defer func() {
		if result.Installation.ID != "" {
			fields["installation_id"] = result.Installation.ID
		}
		s.observeOperation(ctx, startedAt, "handle_callback", err, fields)
	}()

	if s.installationStore == nil {
		err = s.mapError(fmt.Errorf("core: installation store is required"))
		return CallbackResult{}, err
	}
	if s.exchangeClient == nil {
		err = s.mapError(fmt.Errorf("core: exchange client is required"))
		return CallbackResult{}, err
	}
	if strings.TrimSpace(req.Code) == "" {
		err = s.mapError(fmt.Errorf("%w: authorization code is required", ErrInvalidRequest))
		return CallbackResult{}, err
	}
	if strings.TrimSpace(req.State) == "" {
		err = s.mapError(fmt.Errorf("%w: state parameter is required", ErrOAuthStateInvalid))
		return CallbackResult{}, err
	}
	if s.oauthStateStore == nil {
		err = s.mapError(fmt.Errorf("core: oauth state store is required"))
		return CallbackResult{}, err
	}

	record, err := s.oauthStateStore.Consume(ctx, req.State)
	if err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}
	if code := strings.TrimSpace(strings.ToLower(req.ExtensionCode)); code != "" && code != record.ExtensionCode {
		err = s.mapError(fmt.Errorf("%w: state issued for extension %s", ErrOAuthStateInvalid, record.ExtensionCode))
		return CallbackResult{}, err
	}

	installation, err := s.installationStore.Get(ctx, record.InstallationID)
	if err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}
	if installation.Token != "" {
		err = s.mapError(fmt.Errorf("%w: installation %s already holds a token", ErrConflict, installation.ID))
		return CallbackResult{}, err
	}

	extension, err := s.resolveExtensionByCode(ctx, record.ExtensionCode)
	if err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}

	if err = s.installationStore.UpdateStatus(ctx, installation.ID, InstallationStatusCallbackReceived, ""); err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}

	token, exchangeErr := s.exchangeClient.ExchangeAuthorizationCode(ctx, AuthorizationCodeRequest{
		TokenURL:     extension.TokenURL,
		ClientID:     extension.ClientID,
		ClientSecret: extension.ClientSecret,
		Code:         req.Code,
		RedirectURI:  record.RedirectURI,
	})
	if exchangeErr != nil {
		s.failInstallation(ctx, installation.ID, exchangeErr)
		err = s.mapError(exchangeErr)
		return CallbackResult{}, err
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		emptyErr := fmt.Errorf("%w: token endpoint returned an empty access token", ErrUpstream)
		s.failInstallation(ctx, installation.ID, emptyErr)
		err = s.mapError(emptyErr)
		return CallbackResult{}, err
	}

	if err = s.installationStore.SetToken(ctx, installation.ID, token.AccessToken); err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}
	if err = s.installationStore.UpdateStatus(ctx, installation.ID, InstallationStatusTokenExchanged, ""); err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}

	installation, err = s.installationStore.Get(ctx, installation.ID)
	if err != nil {
		err = s.mapError(err)
		return CallbackResult{}, err
	}

	return CallbackResult{Installation: installation}, nil
}

func (s *Service) failInstallation(ctx context.Context, installationID string, cause error) {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	if updateErr := s.installationStore.UpdateStatus(ctx, installationID, InstallationStatusFailed, reason); updateErr != nil {
		s.logError(ctx, "mark installation failed", map[string]any{
			"installation_id": installationID,
			"error":           updateErr.Error(),
		})
	}
}

func (s *Service) callbackURL(extensionCode string) string {
	base := strings.TrimRight(strings.TrimSpace(s.config.CallbackBaseURL), "/")
	if base == "" {
		return extensionCode
	}
	return base + "/" + extensionCode
}

func buildAuthorizationURL(extension Extension, redirectURI, state string) (string, error) {
	target, err := url.Parse(strings.TrimSpace(extension.AuthorizationURL))
	if err != nil {
		return "", fmt.Errorf("%w: extension authorization url is not valid", ErrInvalidRequest)
	}
	query := target.Query()
	query.Set("client_id", extension.ClientID)
	if strings.TrimSpace(extension.Scope) != "" {
		query.Set("scope", extension.Scope)
	}
	query.Set("redirect_uri", redirectURI)
	query.Set("state", state)
	target.RawQuery = query.Encode()
	return target.String(), nil
}
