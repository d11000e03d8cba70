package ledgerRepo

import (
	"context"
	"errors"
	"time"

	"clinicbook/database"
	"clinicbook/models"
	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// MongoLedger keeps bookings in MongoDB. Writers of one professional are serialized by
// bumping that professional's guard document inside the same multi-document transaction
// that checks for overlaps and writes the booking: two concurrent transactions touching
// the same guard conflict, the driver retries the loser, and the retry sees the winner's
// booking. Requires a replica set.
type MongoLedger struct {
	client   *mongo.Client
	bookings *mongo.Collection
	guards   *mongo.Collection
	timeout  time.Duration
	backoff  time.Duration
}

// NewMongoLedger wires the ledger collections of db and ensures their indexes.
func NewMongoLedger(db *mongo.Database, timeout, backoff time.Duration) (*MongoLedger, error) {
	repo := &MongoLedger{
		client:   db.Client(),
		bookings: db.Collection("bookings"),
		guards:   db.Collection("ledger_guards"),
		timeout:  timeout,
		backoff:  backoff,
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func guardID(tenantID, professionalID string) string {
	return tenantID + "#" + professionalID
}

func overlapFilter(tenantID, professionalID string, start, end time.Time, exceptID string) bson.M {
	filter := bson.M{
		"tenant_id":       tenantID,
		"professional_id": professionalID,
		"status":          models.BookingConfirmed,
		"start":           bson.M{"$lt": end},
		"end":             bson.M{"$gt": start},
	}
	if exceptID != "" {
		filter["id"] = bson.M{"$ne": exceptID}
	}
	return filter
}

func (r *MongoLedger) run(ctx context.Context, op func(ctx context.Context) error) error {
	return database.WithRetry(ctx, r.timeout, r.backoff, func(ctx context.Context) error {
		return database.Classify(op(ctx), "booking")
	})
}

// ensureGuard creates the professional's guard document outside any transaction.
func (r *MongoLedger) ensureGuard(ctx context.Context, tenantID, professionalID string) error {
	_, err := r.guards.UpdateOne(ctx,
		bson.M{"_id": guardID(tenantID, professionalID)},
		bson.M{"$setOnInsert": bson.M{"tenant_id": tenantID, "professional_id": professionalID, "version": 0}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// guarded runs fn in a transaction that first increments the professional's guard version.
func (r *MongoLedger) guarded(ctx context.Context, tenantID, professionalID string, fn func(sc mongo.SessionContext) error) error {
	if err := r.ensureGuard(ctx, tenantID, professionalID); err != nil {
		return err
	}
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.guards.UpdateOne(sc, bson.M{"_id": guardID(tenantID, professionalID)}, bson.M{"$inc": bson.M{"version": 1}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, errors.New("ledger guard missing")
		}
		return nil, fn(sc)
	}, txnOpts)
	return err
}

func (r *MongoLedger) Reserve(ctx context.Context, booking *models.Booking) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.guarded(ctx, booking.TenantID, booking.ProfessionalID, func(sc mongo.SessionContext) error {
			// a retried attempt whose first commit landed finds its own booking
			var existing models.Booking
			err := r.bookings.FindOne(sc, bson.M{"tenant_id": booking.TenantID, "id": booking.ID}).Decode(&existing)
			if err == nil {
				if existing.ProfessionalID == booking.ProfessionalID && existing.Start.Equal(booking.Start) {
					return nil
				}
				return utils.Conflict("booking already exists")
			}
			if !errors.Is(err, mongo.ErrNoDocuments) {
				return err
			}

			n, err := r.bookings.CountDocuments(sc, overlapFilter(booking.TenantID, booking.ProfessionalID, booking.Start, booking.End, ""))
			if err != nil {
				return err
			}
			if n > 0 {
				return utils.Conflict(errOverlap)
			}
			_, err = r.bookings.InsertOne(sc, booking)
			return err
		})
	})
}

func (r *MongoLedger) Reschedule(ctx context.Context, tenantID, bookingID string, newStart, at time.Time) (*models.Booking, error) {
	current, err := r.Get(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}

	var updated models.Booking
	err = r.run(ctx, func(ctx context.Context) error {
		return r.guarded(ctx, tenantID, current.ProfessionalID, func(sc mongo.SessionContext) error {
			if err := r.bookings.FindOne(sc, bson.M{"tenant_id": tenantID, "id": bookingID}).Decode(&updated); err != nil {
				return err
			}
			if !updated.IsConfirmed() {
				return utils.Validation("cancelled bookings cannot be rescheduled")
			}
			updated.Start = newStart
			updated.End = newStart.Add(updated.Effective())
			updated.UpdatedAt = at

			n, err := r.bookings.CountDocuments(sc, overlapFilter(tenantID, updated.ProfessionalID, updated.Start, updated.End, bookingID))
			if err != nil {
				return err
			}
			if n > 0 {
				return utils.Conflict(errOverlap)
			}
			_, err = r.bookings.UpdateOne(sc,
				bson.M{"tenant_id": tenantID, "id": bookingID},
				bson.M{"$set": bson.M{"start": updated.Start, "end": updated.End, "updated_at": at}},
			)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoLedger) Cancel(ctx context.Context, tenantID, bookingID string, at time.Time) (*models.Booking, error) {
	var out models.Booking
	err := r.run(ctx, func(ctx context.Context) error {
		err := r.bookings.FindOneAndUpdate(ctx,
			bson.M{"tenant_id": tenantID, "id": bookingID, "status": models.BookingConfirmed},
			bson.M{"$set": bson.M{"status": models.BookingCancelled, "cancelled_at": at, "updated_at": at}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&out)
		if errors.Is(err, mongo.ErrNoDocuments) {
			// already cancelled, or absent for this tenant
			return r.bookings.FindOne(ctx, bson.M{"tenant_id": tenantID, "id": bookingID}).Decode(&out)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoLedger) Get(ctx context.Context, tenantID, bookingID string) (*models.Booking, error) {
	var out models.Booking
	err := r.run(ctx, func(ctx context.Context) error {
		return r.bookings.FindOne(ctx, bson.M{"tenant_id": tenantID, "id": bookingID}).Decode(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MongoLedger) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	out := []models.Booking{}
	err := r.run(ctx, func(ctx context.Context) error {
		cursor, err := r.bookings.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start", Value: 1}, {Key: "id", Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		return cursor.All(ctx, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoLedger) List(ctx context.Context, tenantID string, f models.BookingFilter) ([]models.Booking, error) {
	filter := bson.M{"tenant_id": tenantID}
	if f.ProfessionalID != "" {
		filter["professional_id"] = f.ProfessionalID
	}
	if f.SiteID != "" {
		filter["site_id"] = f.SiteID
	}
	if f.PatientEmail != "" {
		filter["patient_email"] = f.PatientEmail
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.From.IsZero() {
		filter["end"] = bson.M{"$gt": f.From}
	}
	if !f.To.IsZero() {
		filter["start"] = bson.M{"$lt": f.To}
	}
	return r.find(ctx, filter)
}

func (r *MongoLedger) ListConfirmed(ctx context.Context, tenantID, professionalID string, from, to time.Time) ([]models.Booking, error) {
	return r.find(ctx, overlapFilter(tenantID, professionalID, from, to, ""))
}
