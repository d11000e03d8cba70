package database

import (
	"context"
	"errors"
	"net"
	"time"

	"clinicbook/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

// Postgres SQLSTATE codes the ledger cares about.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// Classify converts driver errors into the engine's error taxonomy.
// Errors that already carry a kind pass through untouched.
func Classify(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, pgx.ErrNoRows) {
		return utils.NotFound(what + " not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return utils.Conflict("the requested time overlaps an existing booking")
		case pgUniqueViolation:
			return utils.Conflict(what + " already exists")
		}
	}
	if isTransient(err) {
		return utils.Unavailable("storage unavailable", err)
	}
	return utils.Internal("storage failure", err)
}

// IsDuplicateKey reports whether err is a Postgres unique-key violation.
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, 57P01: admin shutdown
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" || pgErr.Code == "57P01"
	}
	return pgconn.Timeout(err)
}

// WithRetry runs op with a bounded timeout and retries it once, after backoff, when
// it fails with Unavailable. Conflicts and other outcomes are returned immediately.
func WithRetry(ctx context.Context, timeout, backoff time.Duration, op func(ctx context.Context) error) error {
	attempt := func() error {
		octx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return op(octx)
	}

	err := attempt()
	if !utils.IsKind(err, utils.KindUnavailable) || ctx.Err() != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return utils.Unavailable("storage unavailable", ctx.Err())
	case <-time.After(backoff):
	}
	return attempt()
}
