package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrForeignKey = errors.New("referenced record is missing or still in use")
	ErrNotNull    = errors.New("required column is empty")
)

// PostgreSQL SQLSTATE codes we classify
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
)

// MapError classifies driver errors from pgx and lib/pq into the package
// sentinels. The original error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	code := ""
	detail := ""

	var pgxErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgxErr):
		code, detail = pgxErr.Code, pgxErr.Detail
	case errors.As(err, &pqErr):
		code, detail = string(pqErr.Code), pqErr.Detail
	}

	var sentinel error
	switch code {
	case codeUniqueViolation:
		sentinel = ErrDuplicate
	case codeForeignKeyViolation:
		sentinel = ErrForeignKey
	case codeNotNullViolation:
		sentinel = ErrNotNull
	default:
		return err
	}

	if detail != "" {
		return fmt.Errorf("%w (%s): %w", sentinel, detail, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
