package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ProvisionWebhook runs the ordered provisioning steps against the remote
// service. Step 1 persists the profile credentials and is deliberately retained
// when a later step fails, so a retry reuses the stored credentials. Steps 2
// and 3 touch the remote service only; step 4 writes the registration row and
// the provisioned status in a single transaction.
func (s *Service) ProvisionWebhook(ctx context.Context, req ProvisionWebhookRequest) (result ProvisionWebhookResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"installation_id": req.InstallationID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "provision_webhook", err, fields)
	}()

	if s.installationStore == nil || s.profileStore == nil || s.webhookStore == nil {
		err = s.mapError(fmt.Errorf("core: installation, profile, and webhook stores are required"))
		return ProvisionWebhookResult{}, err
	}
	if s.exchangeClient == nil {
		err = s.mapError(fmt.Errorf("core: exchange client is required"))
		return ProvisionWebhookResult{}, err
	}
	if s.provisioner == nil {
		err = s.mapError(fmt.Errorf("core: webhook provisioner is required"))
		return ProvisionWebhookResult{}, err
	}
	if err = validateProvisionRequest(req); err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}

	installation, err := s.installationStore.Get(ctx, req.InstallationID)
	if err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}
	if installation.Status != InstallationStatusTokenExchanged {
		err = s.mapError(fmt.Errorf(
			"%w: installation %s is %s, provisioning requires %s",
			ErrConflict, installation.ID, installation.Status, InstallationStatusTokenExchanged,
		))
		return ProvisionWebhookResult{}, err
	}

	// Step 1: persist remote API credentials on the profile.
	if err = s.profileStore.UpdateCredentials(ctx, UpdateProfileCredentialsInput{
		InstallationID: installation.ID,
		Name:           req.ProfileName,
		AppKey:         req.RemoteAPI.AppKey,
		AppSecret:      req.RemoteAPI.AppSecret,
		TokenURL:       req.RemoteAPI.TokenURL,
	}); err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}

	// Step 2: machine token for the remote management API.
	token, err := s.exchangeClient.ClientCredentialsToken(ctx, ClientCredentialsRequest{
		TokenURL:  req.RemoteAPI.TokenURL,
		AppKey:    req.RemoteAPI.AppKey,
		AppSecret: req.RemoteAPI.AppSecret,
	})
	if err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}

	// Step 3: register the outgoing webhook remotely.
	extension, err := s.extensionForInstallation(ctx, installation)
	if err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}
	callbackURL := s.callbackURL(extension.Code)
	endpoint, err := s.provisioner.RegisterOutgoingWebhook(ctx, RegisterWebhookRequest{
		BaseURL:     req.RemoteAPI.BaseURL,
		AccessToken: token.AccessToken,
		Name:        req.ProfileName,
		CallbackURL: callbackURL,
	})
	if err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}

	// Step 4: registration row plus provisioned status, atomically.
	registration, err := s.webhookStore.CreateRegistration(ctx, CreateWebhookRegistrationInput{
		InstallationID: installation.ID,
		RemoteID:       endpoint.ID,
		Secret:         endpoint.Secret,
		CallbackURL:    callbackURL,
	})
	if err != nil {
		err = s.mapError(err)
		return ProvisionWebhookResult{}, err
	}

	return ProvisionWebhookResult{Registration: registration}, nil
}

func (s *Service) extensionForInstallation(ctx context.Context, installation Installation) (Extension, error) {
	if s.extensionStore == nil {
		return Extension{}, fmt.Errorf("core: extension store is required")
	}
	return s.extensionStore.Get(ctx, installation.ExtensionID)
}

func validateProvisionRequest(req ProvisionWebhookRequest) error {
	if strings.TrimSpace(req.InstallationID) == "" {
		return fmt.Errorf("%w: installation id is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.ProfileName) == "" {
		return fmt.Errorf("%w: profile name is required", ErrInvalidRequest)
	}
	for field, value := range map[string]string{
		"remote base url":  req.RemoteAPI.BaseURL,
		"remote token url": req.RemoteAPI.TokenURL,
		"app key":          req.RemoteAPI.AppKey,
		"app secret":       req.RemoteAPI.AppSecret,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
		}
	}
	return nil
}
