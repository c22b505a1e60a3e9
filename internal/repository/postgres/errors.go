package postgres

import (
	"errors"
	"fmt"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// translateError maps constraint violations onto domain sentinels and wraps
// everything else with the operation name.
func translateError(op string, err error) error {
	switch pqCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
