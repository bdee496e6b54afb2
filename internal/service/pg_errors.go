package service

import (
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation reports whether err stems from a PostgreSQL unique
// constraint (code 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
