package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/usersapp/internal/observability/metrics"
)

// ErrorType classifies a database error for metrics and logs.
func ErrorType(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"):
			return "constraint_violation"
		case strings.HasPrefix(pgErr.Code, "22"):
			return "data_exception"
		case strings.HasPrefix(pgErr.Code, "42"):
			return "syntax_or_access"
		case strings.HasPrefix(pgErr.Code, "08"):
			return "connection"
		default:
			return "pg_" + pgErr.Code
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return "no_rows"
	}
	if pgconn.Timeout(err) {
		return "timeout"
	}
	return fmt.Sprintf("%T", err)
}

func HandleQueryError(err error, notFoundErr error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	if notFoundErr != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table, ErrorType(err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, operation, table string, startTime time.Time) error {
	MeasureQueryDuration(operation, table, startTime)

	if err == nil {
		return nil
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table, ErrorType(err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(operation, table string, startTime time.Time) {
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
}
