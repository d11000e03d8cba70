package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinicbook/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want utils.ErrorKind
	}{
		{"mongo no documents", mongo.ErrNoDocuments, utils.KindNotFound},
		{"pgx no rows", pgx.ErrNoRows, utils.KindNotFound},
		{"exclusion", &pgconn.PgError{Code: "23P01"}, utils.KindConflict},
		{"unique", &pgconn.PgError{Code: "23505"}, utils.KindConflict},
		{"connection failure", &pgconn.PgError{Code: "08006"}, utils.KindUnavailable},
		{"deadline", context.DeadlineExceeded, utils.KindUnavailable},
		{"already typed", utils.Forbidden("no"), utils.KindForbidden},
		{"unknown", errors.New("boom"), utils.KindInternal},
	}
	for _, tc := range cases {
		if got := utils.KindOf(Classify(tc.err, "booking")); got != tc.want {
			t.Fatalf("Classify(%s)=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestWithRetryRetriesUnavailableOnce(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), time.Second, time.Millisecond, func(context.Context) error {
		calls++
		return utils.Unavailable("storage unavailable", errors.New("reset"))
	})
	if calls != 2 {
		t.Fatalf("calls=%d, want 2", calls)
	}
	if !utils.IsKind(err, utils.KindUnavailable) {
		t.Fatalf("err=%v, want Unavailable", err)
	}
}

func TestWithRetryDoesNotRetryConflict(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), time.Second, time.Millisecond, func(context.Context) error {
		calls++
		return utils.Conflict("taken")
	})
	if calls != 1 || !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("calls=%d err=%v, want 1 call and Conflict", calls, err)
	}
}

func TestWithRetryRecovers(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), time.Second, time.Millisecond, func(context.Context) error {
		calls++
		if calls == 1 {
			return utils.Unavailable("storage unavailable", errors.New("reset"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("calls=%d err=%v, want recovery on second attempt", calls, err)
	}
}

func TestWithRetryAppliesTimeout(t *testing.T) {
	err := WithRetry(context.Background(), 10*time.Millisecond, time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return Classify(ctx.Err(), "booking")
	})
	if !utils.IsKind(err, utils.KindUnavailable) {
		t.Fatalf("err=%v, want Unavailable after timeout", err)
	}
}
