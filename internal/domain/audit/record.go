// Package audit provides the change history written alongside every commit.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"registrar/internal/core/apperror"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/internal/metadata"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionSoftDelete Action = "soft_delete"
	ActionDelete     Action = "delete"
)

// ActionFor maps a post-pipeline entry to its audit action.
func ActionFor(e *uow.Entry) Action {
	switch {
	case e.Kind == uow.Insert:
		return ActionCreate
	case e.Kind == uow.Modify && e.SoftDeleted:
		return ActionSoftDelete
	case e.Kind == uow.Delete:
		return ActionDelete
	default:
		return ActionUpdate
	}
}

// Record is one row of the change history.
type Record struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   id.ID           `db:"entity_id" json:"entityId"`
	Action     Action          `db:"action" json:"action"`
	ActorID    id.ID           `db:"actor_id" json:"actorId"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// NewRecord snapshots the entry's entity after the pipeline ran.
// Removed rows carry no snapshot.
func NewRecord(e *uow.Entry, stamp uow.Stamp) (Record, error) {
	rec := Record{
		ID:         id.New(),
		EntityType: e.Entity.EntityName(),
		EntityID:   e.Entity.EntityID(),
		Action:     ActionFor(e),
		ActorID:    stamp.Actor,
		CreatedAt:  stamp.Now,
	}
	if rec.Action == ActionDelete {
		return rec, nil
	}

	values := metadata.Values(e.Entity)
	for _, secret := range redactedColumns {
		delete(values, secret)
	}
	changes, err := json.Marshal(values)
	if err != nil {
		return rec, fmt.Errorf("marshal changes: %w", err)
	}
	rec.Changes = changes
	return rec, nil
}

// Columns never copied into the history.
var redactedColumns = []string{"password_hash", "token_hash"}

// Reader loads history for an entity.
type Reader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Record, error)
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Service exposes entity history to the API.
type Service struct {
	reader   Reader
	registry *metadata.Registry
}

// NewService creates a history service.
func NewService(reader Reader, registry *metadata.Registry) *Service {
	return &Service{reader: reader, registry: registry}
}

// History returns the newest records first.
func (s *Service) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Record, error) {
	if _, ok := s.registry.Get(entityType); !ok {
		return nil, apperror.NewValidation("unknown entity type").WithDetail("entity", entityType)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.reader.History(ctx, entityType, entityID, limit)
}
