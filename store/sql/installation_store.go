package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-extensions/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type InstallationStore struct {
	db   *bun.DB
	repo repository.Repository[*installationRecord]
}

func NewInstallationStore(db *bun.DB) (*InstallationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*installationRecord](db, installationHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid installation repository wiring: %w", err)
		}
	}
	return &InstallationStore{db: db, repo: repo}, nil
}

// CreateWithProfile inserts the installation and its default profile in one
// transaction. Either both rows exist afterwards or neither does.
func (s *InstallationStore) CreateWithProfile(
	ctx context.Context,
	installation core.Installation,
	profile core.Profile,
) (core.Installation, core.Profile, error) {
	if s == nil || s.db == nil {
		return core.Installation{}, core.Profile{}, fmt.Errorf("sqlstore: installation store is not configured")
	}
	if strings.TrimSpace(installation.ID) == "" || strings.TrimSpace(profile.ID) == "" {
		return core.Installation{}, core.Profile{}, fmt.Errorf("%w: installation and profile ids are required", core.ErrInvalidRequest)
	}
	if profile.InstallationID != installation.ID {
		return core.Installation{}, core.Profile{}, fmt.Errorf("%w: profile does not belong to installation", core.ErrInvalidRequest)
	}

	installationRow := newInstallationRecord(installation)
	profileRow := newProfileRecord(profile)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, insertErr := tx.NewInsert().Model(installationRow).Exec(ctx); insertErr != nil {
			return insertErr
		}
		if _, insertErr := tx.NewInsert().Model(profileRow).Exec(ctx); insertErr != nil {
			return insertErr
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.Installation{}, core.Profile{}, fmt.Errorf("%w: installation code collision", core.ErrConflict)
		}
		return core.Installation{}, core.Profile{}, fmt.Errorf("%w: create installation: %v", core.ErrPersistence, err)
	}
	return installationRow.toDomain(), profileRow.toDomain(), nil
}

func (s *InstallationStore) Get(ctx context.Context, id string) (core.Installation, error) {
	if s == nil || s.repo == nil {
		return core.Installation{}, fmt.Errorf("sqlstore: installation store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return core.Installation{}, mapLookupError(err, "installation "+strings.TrimSpace(id))
	}
	return record.toDomain(), nil
}

func (s *InstallationStore) ListByAccount(ctx context.Context, accountID string) ([]core.Installation, error) {
	return s.list(ctx, "account_id", accountID)
}

func (s *InstallationStore) ListByExtension(ctx context.Context, extensionID string) ([]core.Installation, error) {
	return s.list(ctx, "extension_id", extensionID)
}

func (s *InstallationStore) list(ctx context.Context, column, value string) ([]core.Installation, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: installation store is not configured")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: %s is required", core.ErrInvalidRequest, column)
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy(column, "=", value),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Installation, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// SetToken writes the access token guarded on the token column still being
// empty. Rowcount zero distinguishes a missing installation from a lost race:
// the former reports not found, the latter conflict.
func (s *InstallationStore) SetToken(ctx context.Context, id string, token string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: installation store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", core.ErrInvalidRequest)
	}

	result, err := s.db.NewUpdate().
		Model((*installationRecord)(nil)).
		Set("token = ?", token).
		Set("updated_at = ?", time.Now().UTC()).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.token IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: set installation token: %v", core.ErrPersistence, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: set installation token: %v", core.ErrPersistence, err)
	}
	if affected == 0 {
		record, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return mapLookupError(getErr, "installation "+id)
		}
		if record.Token != nil {
			return fmt.Errorf("%w: installation %s already holds a token", core.ErrConflict, id)
		}
		return fmt.Errorf("%w: installation %s", core.ErrNotFound, id)
	}
	return nil
}

func (s *InstallationStore) UpdateStatus(
	ctx context.Context,
	id string,
	status core.InstallationStatus,
	reason string,
) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: installation store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(string(status)) == "" {
		return fmt.Errorf("%w: installation id and status are required", core.ErrInvalidRequest)
	}

	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapLookupError(err, "installation "+id)
	}
	now := time.Now().UTC()
	candidate := record.toDomain()
	if transitionErr := candidate.TransitionTo(status, reason, now); transitionErr != nil {
		return transitionErr
	}
	record.Status = string(candidate.Status)
	record.LastError = candidate.LastError
	record.UpdatedAt = now
	_, err = s.repo.Update(ctx, record, repository.UpdateByID(id))
	return err
}

func (s *InstallationStore) ListStale(
	ctx context.Context,
	statuses []core.InstallationStatus,
	before time.Time,
	limit int,
) ([]core.Installation, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: installation store is not configured")
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	if limit <= 0 {
		limit = 100
	}

	var records []*installationRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status IN (?)", bun.In(values)).
		Where("?TableAlias.updated_at < ?", before.UTC()).
		OrderExpr("?TableAlias.updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list stale installations: %v", core.ErrPersistence, err)
	}
	out := make([]core.Installation, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *InstallationStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("sqlstore: installation store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("code", "=", strings.TrimSpace(code)))
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}
