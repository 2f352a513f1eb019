package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-extensions/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type WebhookStore struct {
	db   *bun.DB
	repo repository.Repository[*webhookRegistrationRecord]
}

func NewWebhookStore(db *bun.DB) (*WebhookStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*webhookRegistrationRecord](db, webhookRegistrationHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid webhook repository wiring: %w", err)
		}
	}
	return &WebhookStore{db: db, repo: repo}, nil
}

// CreateRegistration inserts the registration row and flips the installation
// to provisioned in one transaction. A rollback leaves the installation at
// token_exchanged so the remote-webhook-without-local-row gap is visible.
func (s *WebhookStore) CreateRegistration(
	ctx context.Context,
	in core.CreateWebhookRegistrationInput,
) (core.WebhookRegistration, error) {
	if s == nil || s.db == nil {
		return core.WebhookRegistration{}, fmt.Errorf("sqlstore: webhook store is not configured")
	}
	installationID := strings.TrimSpace(in.InstallationID)
	if installationID == "" {
		return core.WebhookRegistration{}, fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(in.RemoteID) == "" || strings.TrimSpace(in.Secret) == "" {
		return core.WebhookRegistration{}, fmt.Errorf("%w: remote id and secret are required", core.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	record := &webhookRegistrationRecord{
		ID:             uuid.NewString(),
		InstallationID: installationID,
		RemoteID:       strings.TrimSpace(in.RemoteID),
		Secret:         in.Secret,
		CallbackURL:    strings.TrimSpace(in.CallbackURL),
		CreatedAt:      now,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
			return insertErr
		}
		result, updateErr := tx.NewUpdate().
			Model((*installationRecord)(nil)).
			Set("status = ?", string(core.InstallationStatusProvisioned)).
			Set("last_error = ?", "").
			Set("updated_at = ?", now).
			Where("?TableAlias.id = ?", installationID).
			Where("?TableAlias.status = ?", string(core.InstallationStatusTokenExchanged)).
			Exec(ctx)
		if updateErr != nil {
			return updateErr
		}
		affected, affectedErr := result.RowsAffected()
		if affectedErr != nil {
			return affectedErr
		}
		if affected == 0 {
			return fmt.Errorf("%w: installation %s is not awaiting provisioning", core.ErrConflict, installationID)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.WebhookRegistration{}, fmt.Errorf("%w: installation %s already has a webhook registration", core.ErrConflict, installationID)
		}
		if isDomainSentinel(err) {
			return core.WebhookRegistration{}, err
		}
		return core.WebhookRegistration{}, fmt.Errorf("%w: create webhook registration: %v", core.ErrPersistence, err)
	}
	return record.toDomain(), nil
}

func (s *WebhookStore) GetByInstallation(ctx context.Context, installationID string) (core.WebhookRegistration, error) {
	if s == nil || s.repo == nil {
		return core.WebhookRegistration{}, fmt.Errorf("sqlstore: webhook store is not configured")
	}
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return core.WebhookRegistration{}, fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("installation_id", "=", installationID))
	if err != nil {
		return core.WebhookRegistration{}, err
	}
	if len(records) == 0 {
		return core.WebhookRegistration{}, fmt.Errorf("%w: webhook registration for installation %s", core.ErrNotFound, installationID)
	}
	return records[0].toDomain(), nil
}

var _ core.WebhookStore = (*WebhookStore)(nil)
