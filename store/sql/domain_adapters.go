package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-extensions/core"
)

func (r *accountRecord) toDomain() core.Account {
	if r == nil {
		return core.Account{}
	}
	return core.Account{
		ID:          r.ID,
		Name:        r.Name,
		DisplayName: r.DisplayName,
		URL:         r.URL,
		Disabled:    r.Disabled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r *extensionRecord) toDomain() core.Extension {
	if r == nil {
		return core.Extension{}
	}
	return core.Extension{
		ID:               r.ID,
		Code:             r.Code,
		Name:             r.Name,
		Description:      r.Description,
		AuthorizationURL: r.AuthorizationURL,
		TokenURL:         r.TokenURL,
		MessageURL:       r.MessageURL,
		ClientID:         r.ClientID,
		ClientSecret:     r.ClientSecret,
		Scope:            r.Scope,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r *installationRecord) toDomain() core.Installation {
	if r == nil {
		return core.Installation{}
	}
	token := ""
	if r.Token != nil {
		token = *r.Token
	}
	return core.Installation{
		ID:          r.ID,
		Code:        r.Code,
		AccountID:   r.AccountID,
		ExtensionID: r.ExtensionID,
		Token:       token,
		Status:      core.InstallationStatus(r.Status),
		LastError:   r.LastError,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func newInstallationRecord(installation core.Installation) *installationRecord {
	record := &installationRecord{
		ID:          installation.ID,
		Code:        installation.Code,
		AccountID:   installation.AccountID,
		ExtensionID: installation.ExtensionID,
		Status:      string(installation.Status),
		LastError:   installation.LastError,
		CreatedAt:   installation.CreatedAt,
		UpdatedAt:   installation.UpdatedAt,
	}
	if strings.TrimSpace(installation.Token) != "" {
		token := installation.Token
		record.Token = &token
	}
	return record
}

func (r *profileRecord) toDomain() core.Profile {
	if r == nil {
		return core.Profile{}
	}
	return core.Profile{
		ID:             r.ID,
		InstallationID: r.InstallationID,
		Code:           r.Code,
		Name:           r.Name,
		AppKey:         r.AppKey,
		AppSecret:      r.AppSecret,
		TokenURL:       r.TokenURL,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func newProfileRecord(profile core.Profile) *profileRecord {
	return &profileRecord{
		ID:             profile.ID,
		InstallationID: profile.InstallationID,
		Code:           profile.Code,
		Name:           profile.Name,
		AppKey:         profile.AppKey,
		AppSecret:      profile.AppSecret,
		TokenURL:       profile.TokenURL,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}

func (r *webhookRegistrationRecord) toDomain() core.WebhookRegistration {
	if r == nil {
		return core.WebhookRegistration{}
	}
	return core.WebhookRegistration{
		ID:             r.ID,
		InstallationID: r.InstallationID,
		RemoteID:       r.RemoteID,
		Secret:         r.Secret,
		CallbackURL:    r.CallbackURL,
		CreatedAt:      r.CreatedAt,
	}
}

func (r *actionRecord) toDomain() core.Action {
	if r == nil {
		return core.Action{}
	}
	return core.Action{
		ID:             r.ID,
		InstallationID: r.InstallationID,
		Name:           r.ActionName,
		TableSource:    r.TableSource,
		EventType:      r.EventType,
		Message:        r.Message,
		ResponseField:  r.ResponseField,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// mapLookupError normalizes driver and repository lookup failures onto the
// domain's not-found sentinel so callers never branch on raw driver errors.
func mapLookupError(err error, subject string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", core.ErrNotFound, subject)
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryNotFound {
		return fmt.Errorf("%w: %s", core.ErrNotFound, subject)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique violation")
}
