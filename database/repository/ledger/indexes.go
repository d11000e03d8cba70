package ledgerRepo

import (
	"context"
	"time"

	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the necessary indexes on the bookings collection.
func (r *MongoLedger) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique booking id per tenant
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("tenant_id_unique"),
		},
		// Overlap checks and calendar reads
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "professional_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("tenant_professional_status_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "patient_email", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("tenant_patient_start_idx"),
		},
	}

	if _, err := r.bookings.Indexes().CreateMany(ctx, indexModels); err != nil {
		return utils.Unavailable("failed to create booking indexes", err)
	}
	return nil
}
