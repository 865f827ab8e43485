package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapErrorPgx(t *testing.T) {
	err := MapError(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", Detail: "Key (email)=(a@b.c) already exists."}))
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "already exists")

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))

	assert.ErrorIs(t, MapError(&pgconn.PgError{Code: "23503"}), ErrForeignKey)
	assert.ErrorIs(t, MapError(&pgconn.PgError{Code: "23502"}), ErrNotNull)
}

func TestMapErrorLibPQ(t *testing.T) {
	assert.ErrorIs(t, MapError(&pq.Error{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, MapError(&pq.Error{Code: "23503"}), ErrForeignKey)
}

func TestMapErrorPassthrough(t *testing.T) {
	assert.Nil(t, MapError(nil))
	assert.ErrorIs(t, MapError(gorm.ErrRecordNotFound), ErrNotFound)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapError(plain))

	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), MapError(other))
}
