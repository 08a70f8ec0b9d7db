package postgres

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"

	"registrar/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes the store translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// "Key (email)=(a@b.c) already exists."
var keyDetail = regexp.MustCompile(`^Key \(([^)]+)\)=\((.*)\)`)

// MapError turns constraint violations into AppErrors and wraps the rest.
func MapError(entityName, op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s %s: %w", op, entityName, err)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		field, value := pgErr.ConstraintName, ""
		if m := keyDetail.FindStringSubmatch(pgErr.Detail); m != nil {
			field, value = m[1], m[2]
		}
		return apperror.NewDuplicate(entityName, field, value).WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewConflict("referenced by or referencing another record").
			WithDetail("entity", entityName).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return fmt.Errorf("%s %s: %w", op, entityName, err)
}
