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

type ProfileStore struct {
	db   *bun.DB
	repo repository.Repository[*profileRecord]
}

func NewProfileStore(db *bun.DB) (*ProfileStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*profileRecord](db, profileHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid profile repository wiring: %w", err)
		}
	}
	return &ProfileStore{db: db, repo: repo}, nil
}

func (s *ProfileStore) GetByInstallation(ctx context.Context, installationID string) (core.Profile, error) {
	if s == nil || s.repo == nil {
		return core.Profile{}, fmt.Errorf("sqlstore: profile store is not configured")
	}
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return core.Profile{}, fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("installation_id", "=", installationID))
	if err != nil {
		return core.Profile{}, err
	}
	if len(records) == 0 {
		return core.Profile{}, fmt.Errorf("%w: profile for installation %s", core.ErrNotFound, installationID)
	}
	return records[0].toDomain(), nil
}

// UpdateCredentials persists the remote API credentials on the installation's
// profile. Rowcount zero means there is no profile to update.
func (s *ProfileStore) UpdateCredentials(ctx context.Context, in core.UpdateProfileCredentialsInput) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: profile store is not configured")
	}
	installationID := strings.TrimSpace(in.InstallationID)
	if installationID == "" {
		return fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}

	query := s.db.NewUpdate().
		Model((*profileRecord)(nil)).
		Set("app_key = ?", strings.TrimSpace(in.AppKey)).
		Set("app_secret = ?", in.AppSecret).
		Set("token_url = ?", strings.TrimSpace(in.TokenURL)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("?TableAlias.installation_id = ?", installationID)
	if strings.TrimSpace(in.Name) != "" {
		query = query.Set("name = ?", strings.TrimSpace(in.Name))
	}

	result, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: update profile credentials: %v", core.ErrPersistence, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update profile credentials: %v", core.ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: profile for installation %s", core.ErrNotFound, installationID)
	}
	return nil
}

func (s *ProfileStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("sqlstore: profile store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("code", "=", strings.TrimSpace(code)))
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

var _ core.ProfileStore = (*ProfileStore)(nil)
