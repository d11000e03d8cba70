package ledgerRepo

import (
	"context"
	"errors"
	"testing"

	"clinicbook/database"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestReconcileDuplicate(t *testing.T) {
	ctx := context.Background()
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "bookings_pkey"}
	b := newBooking("b1", "tenant-a", "p1", at(9, 0))

	stored := func(found *models.Booking, err error) func(context.Context) (*models.Booking, error) {
		return func(context.Context) (*models.Booking, error) { return found, err }
	}

	cases := []struct {
		name    string
		err     error
		lookup  func(context.Context) (*models.Booking, error)
		wantNil bool
	}{
		{"no error", nil, stored(nil, errors.New("unused")), true},
		{"committed before retry", dup, stored(newBooking("b1", "tenant-a", "p1", at(9, 0)), nil), true},
		{"id reused for another slot", dup, stored(newBooking("b1", "tenant-a", "p1", at(10, 0)), nil), false},
		{"id reused for another professional", dup, stored(newBooking("b1", "tenant-a", "p2", at(9, 0)), nil), false},
		{"lookup fails", dup, stored(nil, errors.New("connection reset")), false},
		{"overlap is not a duplicate", &pgconn.PgError{Code: "23P01"}, stored(b, nil), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := reconcileDuplicate(ctx, tc.err, b, tc.lookup)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("reconcileDuplicate=%v, want nil", err)
				}
				return
			}
			if err != tc.err {
				t.Fatalf("reconcileDuplicate=%v, want original %v", err, tc.err)
			}
			if !utils.IsKind(database.Classify(err, "booking"), utils.KindConflict) {
				t.Fatalf("Classify(%v) is not a conflict", err)
			}
		})
	}
}
