package domain

import (
	"context"
	"fmt"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
	"registrar/internal/core/uow"
	"registrar/pkg/logger"
)

// Entity is what the generic service manages.
type Entity interface {
	entity.Persistable
	entity.Validatable
}

// UnitOfWorkFactory hands out a fresh unit-of-work per operation.
type UnitOfWorkFactory interface {
	New() *uow.UnitOfWork
}

// EntityService provides create/read/update/delete for one entity type.
// Every write goes through a unit-of-work commit, so audit and soft-delete
// fields are never set here.
type EntityService[T Entity] struct {
	reader     Reader[T]
	units      UnitOfWorkFactory
	hooks      *HookRegistry[T]
	entityName string
}

// EntityServiceConfig configures the service.
type EntityServiceConfig[T Entity] struct {
	Reader     Reader[T]
	Units      UnitOfWorkFactory
	EntityName string
}

// NewEntityService creates a new entity service.
func NewEntityService[T Entity](cfg EntityServiceConfig[T]) *EntityService[T] {
	return &EntityService[T]{
		reader:     cfg.Reader,
		units:      cfg.Units,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *EntityService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Reader exposes the underlying reader.
func (s *EntityService[T]) Reader() Reader[T] {
	return s.reader
}

func (s *EntityService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *EntityService[T]) normalizeGetErr(err error, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, key)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", key)
}

// Commit registers changes through fn and commits them as the caller.
func Commit(ctx context.Context, units UnitOfWorkFactory, fn func(u *uow.UnitOfWork)) (uow.Stats, error) {
	u := units.New()
	fn(u)
	return u.Commit(ctx, appctx.ActorID(ctx))
}

// Create inserts a new entity.
func (s *EntityService[T]) Create(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeCreate, e); err != nil {
		return err
	}

	if _, err := Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Insert(e) }); err != nil {
		return fmt.Errorf("create %s: %w", s.entityName, err)
	}

	if err := s.hooks.Run(ctx, AfterCreate, e); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// GetByID retrieves a live entity by ID.
func (s *EntityService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.reader.GetByID(ctx, entityID)
	if err != nil {
		return e, s.normalizeGetErr(err, entityID.String())
	}
	return e, nil
}

// List retrieves entities with filtering.
func (s *EntityService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.reader.List(ctx, filter.Normalize())
}

// Update saves a modified entity. The entity must carry the version it was
// read with.
func (s *EntityService[T]) Update(ctx context.Context, e T) error {
	if err := e.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}
	if err := s.hooks.Run(ctx, BeforeUpdate, e); err != nil {
		return err
	}

	if _, err := Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Update(e) }); err != nil {
		return fmt.Errorf("update %s: %w", s.entityName, err)
	}

	if err := s.hooks.Run(ctx, AfterUpdate, e); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// Delete issues an ordinary delete; soft-deletable entities are flagged by
// the save pipeline.
func (s *EntityService[T]) Delete(ctx context.Context, entityID id.ID) error {
	e, err := s.reader.GetByID(ctx, entityID)
	if err != nil {
		return s.normalizeGetErr(err, entityID.String())
	}
	if err := s.hooks.Run(ctx, BeforeDelete, e); err != nil {
		return err
	}

	if _, err := Commit(ctx, s.units, func(u *uow.UnitOfWork) { u.Delete(e) }); err != nil {
		return fmt.Errorf("delete %s: %w", s.entityName, err)
	}

	if err := s.hooks.Run(ctx, AfterDelete, e); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "entity", s.entityName, "error", err)
	}
	return nil
}

// UniqueHook rejects create/update when another live row has the same value
// in column.
func UniqueHook[T Entity](reader Reader[T], entityName, column string, value func(T) string) Hook[T] {
	return func(ctx context.Context, e T) error {
		v := value(e)
		if v == "" {
			return nil
		}
		exists, err := reader.ExistsBy(ctx, column, v, e.EntityID())
		if err != nil {
			return fmt.Errorf("check unique %s.%s: %w", entityName, column, err)
		}
		if exists {
			return apperror.NewDuplicate(entityName, column, v)
		}
		return nil
	}
}
