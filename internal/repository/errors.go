package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when a guest with the same email already exists.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateName is returned when a hairstyle name is already in the catalog.
var ErrDuplicateName = errors.New("hairstyle name already exists")

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
