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

type ExtensionStore struct {
	db   *bun.DB
	repo repository.Repository[*extensionRecord]
}

func NewExtensionStore(db *bun.DB) (*ExtensionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*extensionRecord](db, extensionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid extension repository wiring: %w", err)
		}
	}
	return &ExtensionStore{db: db, repo: repo}, nil
}

func (s *ExtensionStore) Create(ctx context.Context, in core.CreateExtensionInput) (core.Extension, error) {
	if s == nil || s.repo == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: extension store is not configured")
	}
	candidate := core.Extension{
		Name:             in.Name,
		AuthorizationURL: in.AuthorizationURL,
		TokenURL:         in.TokenURL,
		ClientID:         in.ClientID,
	}
	if err := candidate.Validate(); err != nil {
		return core.Extension{}, err
	}
	code := strings.TrimSpace(strings.ToLower(in.Code))
	if code == "" {
		return core.Extension{}, fmt.Errorf("%w: extension code is required", core.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	record := &extensionRecord{
		ID:               uuid.NewString(),
		Code:             code,
		Name:             strings.TrimSpace(in.Name),
		Description:      strings.TrimSpace(in.Description),
		AuthorizationURL: strings.TrimSpace(in.AuthorizationURL),
		TokenURL:         strings.TrimSpace(in.TokenURL),
		MessageURL:       strings.TrimSpace(in.MessageURL),
		ClientID:         strings.TrimSpace(in.ClientID),
		ClientSecret:     in.ClientSecret,
		Scope:            strings.TrimSpace(in.Scope),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Extension{}, fmt.Errorf("%w: extension code %s already registered", core.ErrConflict, code)
		}
		return core.Extension{}, err
	}
	return created.toDomain(), nil
}

func (s *ExtensionStore) Get(ctx context.Context, id string) (core.Extension, error) {
	if s == nil || s.repo == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: extension store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return core.Extension{}, mapLookupError(err, "extension "+strings.TrimSpace(id))
	}
	return record.toDomain(), nil
}

func (s *ExtensionStore) GetByCode(ctx context.Context, code string) (core.Extension, error) {
	if s == nil || s.repo == nil {
		return core.Extension{}, fmt.Errorf("sqlstore: extension store is not configured")
	}
	code = strings.TrimSpace(strings.ToLower(code))
	if code == "" {
		return core.Extension{}, fmt.Errorf("%w: extension code is required", core.ErrInvalidRequest)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("code", "=", code))
	if err != nil {
		return core.Extension{}, err
	}
	if len(records) == 0 {
		return core.Extension{}, fmt.Errorf("%w: extension %s", core.ErrNotFound, code)
	}
	return records[0].toDomain(), nil
}

func (s *ExtensionStore) List(ctx context.Context) ([]core.Extension, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: extension store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("name ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Extension, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *ExtensionStore) CodeExists(ctx context.Context, code string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("sqlstore: extension store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("code", "=", strings.TrimSpace(strings.ToLower(code))))
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}
