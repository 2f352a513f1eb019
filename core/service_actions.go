package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Service) CreateAction(ctx context.Context, action Action) (created Action, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"installation_id": action.InstallationID,
		"action_name":     action.Name,
	}
	defer func() {
		if created.ID != "" {
			fields["action_id"] = created.ID
		}
		s.observeOperation(ctx, startedAt, "create_action", err, fields)
	}()

	if s.actionStore == nil {
		err = s.mapError(fmt.Errorf("core: action store is required"))
		return Action{}, err
	}
	if err = action.Validate(); err != nil {
		err = s.mapError(err)
		return Action{}, err
	}
	if s.installationStore != nil {
		if _, err = s.installationStore.Get(ctx, action.InstallationID); err != nil {
			err = s.mapError(err)
			return Action{}, err
		}
	}

	now := time.Now().UTC()
	if strings.TrimSpace(action.ID) == "" {
		action.ID = uuid.NewString()
	}
	action.CreatedAt = now
	action.UpdatedAt = now

	created, err = s.actionStore.Create(ctx, action)
	if err != nil {
		err = s.mapError(err)
		return Action{}, err
	}
	return created, nil
}

func (s *Service) ListActions(ctx context.Context, installationID string) ([]Action, error) {
	if s.actionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: action store is required"))
	}
	if strings.TrimSpace(installationID) == "" {
		return nil, s.mapError(fmt.Errorf("%w: installation id is required", ErrInvalidRequest))
	}
	actions, err := s.actionStore.ListByInstallation(ctx, installationID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return actions, nil
}

// DispatchAction renders the action's message with the trigger payload and
// posts it to the extension's message endpoint using the installation token.
func (s *Service) DispatchAction(ctx context.Context, req DispatchActionRequest) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"action_id": req.ActionID}
	defer func() {
		s.observeOperation(ctx, startedAt, "dispatch_action", err, fields)
	}()

	if s.actionStore == nil || s.installationStore == nil {
		err = s.mapError(fmt.Errorf("core: action and installation stores are required"))
		return err
	}
	if s.messagePoster == nil {
		err = s.mapError(fmt.Errorf("core: message poster is required"))
		return err
	}
	if strings.TrimSpace(req.ActionID) == "" {
		err = s.mapError(fmt.Errorf("%w: action id is required", ErrInvalidRequest))
		return err
	}

	action, err := s.actionStore.Get(ctx, req.ActionID)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	fields["installation_id"] = action.InstallationID

	installation, err := s.installationStore.Get(ctx, action.InstallationID)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if installation.Status != InstallationStatusProvisioned {
		err = s.mapError(fmt.Errorf(
			"%w: installation %s is %s, dispatch requires %s",
			ErrConflict, installation.ID, installation.Status, InstallationStatusProvisioned,
		))
		return err
	}

	extension, err := s.extensionForInstallation(ctx, installation)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if strings.TrimSpace(extension.MessageURL) == "" {
		err = s.mapError(fmt.Errorf("%w: extension %s has no message endpoint", ErrInvalidRequest, extension.Code))
		return err
	}

	payload := map[string]any{
		"text": renderActionMessage(action.Message, req.Payload),
	}
	if strings.TrimSpace(action.ResponseField) != "" {
		payload["response_field"] = action.ResponseField
	}

	if err = s.messagePoster.Post(ctx, PostMessageRequest{
		URL:     extension.MessageURL,
		Token:   installation.Token,
		Payload: payload,
	}); err != nil {
		err = s.mapError(err)
		return err
	}
	return nil
}

// renderActionMessage substitutes {field} placeholders in the template with
// the matching payload values. Unknown placeholders are left intact.
func renderActionMessage(template string, payload map[string]any) string {
	if len(payload) == 0 {
		return template
	}
	rendered := template
	for key, value := range payload {
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", fmt.Sprint(value))
	}
	return rendered
}
