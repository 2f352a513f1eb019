package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-extensions/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ActionStore struct {
	db   *bun.DB
	repo repository.Repository[*actionRecord]
}

func NewActionStore(db *bun.DB) (*ActionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*actionRecord](db, actionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid action repository wiring: %w", err)
		}
	}
	return &ActionStore{db: db, repo: repo}, nil
}

func (s *ActionStore) Create(ctx context.Context, action core.Action) (core.Action, error) {
	if s == nil || s.repo == nil {
		return core.Action{}, fmt.Errorf("sqlstore: action store is not configured")
	}
	if err := action.Validate(); err != nil {
		return core.Action{}, err
	}

	now := time.Now().UTC()
	record := &actionRecord{
		ID:             strings.TrimSpace(action.ID),
		InstallationID: strings.TrimSpace(action.InstallationID),
		ActionName:     strings.TrimSpace(action.Name),
		TableSource:    strings.TrimSpace(action.TableSource),
		EventType:      strings.TrimSpace(action.EventType),
		Message:        action.Message,
		ResponseField:  strings.TrimSpace(action.ResponseField),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.Action{}, err
	}
	return created.toDomain(), nil
}

func (s *ActionStore) Get(ctx context.Context, id string) (core.Action, error) {
	if s == nil || s.repo == nil {
		return core.Action{}, fmt.Errorf("sqlstore: action store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return core.Action{}, mapLookupError(err, "action "+strings.TrimSpace(id))
	}
	return record.toDomain(), nil
}

func (s *ActionStore) ListByInstallation(ctx context.Context, installationID string) ([]core.Action, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: action store is not configured")
	}
	installationID = strings.TrimSpace(installationID)
	if installationID == "" {
		return nil, fmt.Errorf("%w: installation id is required", core.ErrInvalidRequest)
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("installation_id", "=", installationID),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Action, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func isDomainSentinel(err error) bool {
	return errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrConflict) ||
		errors.Is(err, core.ErrInvalidRequest)
}

var _ core.ActionStore = (*ActionStore)(nil)
