package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinicbook/database"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema relies on btree_gist so tenant and professional equality can share the
// exclusion constraint with the range overlap operator.
const schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS bookings (
	id               TEXT        NOT NULL,
	tenant_id        TEXT        NOT NULL,
	site_id          TEXT        NOT NULL,
	professional_id  TEXT        NOT NULL,
	treatment_id     TEXT        NOT NULL,
	start_time       TIMESTAMPTZ NOT NULL,
	end_time         TIMESTAMPTZ NOT NULL,
	duration_minutes INTEGER     NOT NULL CHECK (duration_minutes > 0),
	buffer_minutes   INTEGER     NOT NULL CHECK (buffer_minutes >= 0),
	patient_name     TEXT        NOT NULL,
	patient_email    TEXT        NOT NULL,
	notes            TEXT        NOT NULL DEFAULT '',
	status           TEXT        NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	cancelled_at     TIMESTAMPTZ,
	PRIMARY KEY (tenant_id, id),
	CHECK (end_time > start_time),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		tenant_id WITH =,
		professional_id WITH =,
		tstzrange(start_time, end_time, '[)') WITH &&
	) WHERE (status = 'Confirmed')
);

CREATE INDEX IF NOT EXISTS bookings_tenant_start_idx ON bookings (tenant_id, start_time);
`

const bookingColumns = `id, tenant_id, site_id, professional_id, treatment_id, start_time, end_time,
	duration_minutes, buffer_minutes, patient_name, patient_email, notes, status,
	created_at, updated_at, cancelled_at`

// PostgresLedger delegates the no-overlap rule to an exclusion constraint, so the
// check and the write are one statement.
type PostgresLedger struct {
	pool    *pgxpool.Pool
	timeout time.Duration
	backoff time.Duration
}

func NewPostgresLedger(pool *pgxpool.Pool, timeout, backoff time.Duration) *PostgresLedger {
	return &PostgresLedger{pool: pool, timeout: timeout, backoff: backoff}
}

// EnsureSchema creates the bookings table and its constraint when missing.
func (r *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create ledger schema: %w", err)
	}
	return nil
}

func (r *PostgresLedger) run(ctx context.Context, op func(ctx context.Context) error) error {
	return database.WithRetry(ctx, r.timeout, r.backoff, func(ctx context.Context) error {
		return database.Classify(op(ctx), "booking")
	})
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	var status string
	err := row.Scan(&b.ID, &b.TenantID, &b.SiteID, &b.ProfessionalID, &b.TreatmentID, &b.Start, &b.End,
		&b.DurationMinutes, &b.BufferMinutes, &b.PatientName, &b.PatientEmail, &b.Notes, &status,
		&b.CreatedAt, &b.UpdatedAt, &b.CancelledAt)
	if err != nil {
		return nil, err
	}
	b.Status = models.BookingStatus(status)
	return &b, nil
}

func (r *PostgresLedger) Reserve(ctx context.Context, b *models.Booking) error {
	return r.run(ctx, func(ctx context.Context) error {
		_, err := r.pool.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
			b.ID, b.TenantID, b.SiteID, b.ProfessionalID, b.TreatmentID, b.Start, b.End,
			b.DurationMinutes, b.BufferMinutes, b.PatientName, b.PatientEmail, b.Notes, string(b.Status),
			b.CreatedAt, b.UpdatedAt, b.CancelledAt)
		return reconcileDuplicate(ctx, err, b, func(ctx context.Context) (*models.Booking, error) {
			return scanBooking(r.pool.QueryRow(ctx,
				`SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 AND id = $2`, b.TenantID, b.ID))
		})
	})
}

// reconcileDuplicate treats a duplicate id as success when the stored row is the
// same reservation, which happens when a retried insert had already committed.
func reconcileDuplicate(ctx context.Context, err error, b *models.Booking, lookup func(context.Context) (*models.Booking, error)) error {
	if !database.IsDuplicateKey(err) {
		return err
	}
	existing, lookupErr := lookup(ctx)
	if lookupErr != nil {
		return err
	}
	if existing.ProfessionalID == b.ProfessionalID && existing.Start.Equal(b.Start) {
		return nil
	}
	return err
}

func (r *PostgresLedger) Reschedule(ctx context.Context, tenantID, bookingID string, newStart, at time.Time) (*models.Booking, error) {
	var out *models.Booking
	err := r.run(ctx, func(ctx context.Context) error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		current, err := scanBooking(tx.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, bookingID))
		if err != nil {
			return err
		}
		if !current.IsConfirmed() {
			return utils.Validation("cancelled bookings cannot be rescheduled")
		}
		// one statement: the exclusion constraint sees the old interval replaced, not added
		out, err = scanBooking(tx.QueryRow(ctx, `UPDATE bookings
			SET start_time = $3,
			    end_time = $3 + make_interval(mins => duration_minutes + buffer_minutes),
			    updated_at = $4
			WHERE tenant_id = $1 AND id = $2
			RETURNING `+bookingColumns, tenantID, bookingID, newStart, at))
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresLedger) Cancel(ctx context.Context, tenantID, bookingID string, at time.Time) (*models.Booking, error) {
	var out *models.Booking
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = scanBooking(r.pool.QueryRow(ctx, `UPDATE bookings
			SET status = 'Cancelled', cancelled_at = $3, updated_at = $3
			WHERE tenant_id = $1 AND id = $2 AND status = 'Confirmed'
			RETURNING `+bookingColumns, tenantID, bookingID, at))
		if errors.Is(err, pgx.ErrNoRows) {
			out, err = scanBooking(r.pool.QueryRow(ctx,
				`SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 AND id = $2`, tenantID, bookingID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresLedger) Get(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	var out *models.Booking
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		out, err = scanBooking(r.pool.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE tenant_id = $1 AND id = $2`, tenantID, bookingID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresLedger) query(ctx context.Context, where []string, args []any) ([]models.Booking, error) {
	sql := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_time, id`
	out := []models.Booking{}
	err := r.run(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			b, err := scanBooking(rows)
			if err != nil {
				return err
			}
			out = append(out, *b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// listWhere builds the WHERE clause of a tenant-scoped listing.
func listWhere(tenantID string, f models.BookingFilter) ([]string, []any) {
	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.ProfessionalID != "" {
		add("professional_id = $%d", f.ProfessionalID)
	}
	if f.SiteID != "" {
		add("site_id = $%d", f.SiteID)
	}
	if f.PatientEmail != "" {
		add("patient_email = $%d", f.PatientEmail)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.From.IsZero() {
		add("end_time > $%d", f.From)
	}
	if !f.To.IsZero() {
		add("start_time < $%d", f.To)
	}
	return where, args
}

func (r *PostgresLedger) List(ctx context.Context, tenantID string, f models.BookingFilter) ([]models.Booking, error) {
	where, args := listWhere(tenantID, f)
	return r.query(ctx, where, args)
}

func (r *PostgresLedger) ListConfirmed(ctx context.Context, tenantID, professionalID string, from, to time.Time) ([]models.Booking, error) {
	where, args := listWhere(tenantID, models.BookingFilter{
		ProfessionalID: professionalID,
		Status:         models.BookingConfirmed,
		From:           from,
		To:             to,
	})
	return r.query(ctx, where, args)
}
