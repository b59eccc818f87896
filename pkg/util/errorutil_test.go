package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	orig := NewValidationError("bad input", map[string]any{"email": "required"})
	wrapped := fmt.Errorf("handler: %w", orig)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "required", de.Details["email"])
}

func TestToDomainError_NoRowsIsNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_PostgresConstraintErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	de := ToDomainError(unique)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "users_email_key", de.Details["constraint"])
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "store_locations_store_brand_id_fkey"}
	de = ToDomainError(fk)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.False(t, IsUniqueViolation(fk))
}

func TestToDomainError_FiberErrors(t *testing.T) {
	de := ToDomainError(fiber.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)

	de = ToDomainError(fiber.NewError(http.StatusForbidden, "nope"))
	assert.Equal(t, "FORBIDDEN", de.Code)
	assert.Equal(t, "nope", de.Message)
}

func TestToDomainError_UnknownIsInternal(t *testing.T) {
	cause := errors.New("boom")
	de := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
	assert.Nil(t, ToDomainError(nil))
}
