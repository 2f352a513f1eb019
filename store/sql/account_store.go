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

type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*accountRecord]
}

func NewAccountStore(db *bun.DB) (*AccountStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accountRecord](db, accountHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account repository wiring: %w", err)
		}
	}
	return &AccountStore{db: db, repo: repo}, nil
}

func (s *AccountStore) Create(ctx context.Context, in core.CreateAccountInput) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	candidate := core.Account{Name: in.Name, URL: in.URL}
	if err := candidate.Validate(); err != nil {
		return core.Account{}, err
	}

	now := time.Now().UTC()
	record := &accountRecord{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		DisplayName: strings.TrimSpace(in.DisplayName),
		URL:         strings.TrimSpace(in.URL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, fmt.Errorf("%w: account url %s already registered", core.ErrConflict, record.URL)
		}
		return core.Account{}, err
	}
	return created.toDomain(), nil
}

func (s *AccountStore) Get(ctx context.Context, id string) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return core.Account{}, mapLookupError(err, "account "+strings.TrimSpace(id))
	}
	return record.toDomain(), nil
}

func (s *AccountStore) GetByURL(ctx context.Context, accountURL string) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	accountURL = strings.TrimSpace(accountURL)
	if accountURL == "" {
		return core.Account{}, fmt.Errorf("%w: account url is required", core.ErrInvalidRequest)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("url", "=", accountURL))
	if err != nil {
		return core.Account{}, err
	}
	if len(records) == 0 {
		return core.Account{}, fmt.Errorf("%w: account %s", core.ErrNotFound, accountURL)
	}
	return records[0].toDomain(), nil
}

func (s *AccountStore) List(ctx context.Context) ([]core.Account, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: account store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *AccountStore) SetDisabled(ctx context.Context, id string, disabled bool) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: account store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: account id is required", core.ErrInvalidRequest)
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapLookupError(err, "account "+id)
	}
	record.Disabled = disabled
	record.UpdatedAt = time.Now().UTC()
	_, err = s.repo.Update(ctx, record, repository.UpdateByID(id))
	return err
}
