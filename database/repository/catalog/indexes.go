package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ensureIndexes creates the tenant-scoped unique indexes of every catalog collection.
func (r *MongoCatalog) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scopedUnique := mongo.IndexModel{
		Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("tenant_id_unique"),
	}

	plan := map[*mongo.Collection][]mongo.IndexModel{
		r.tenants: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("unique_id")},
		},
		r.sites: {scopedUnique},
		r.professionals: {
			scopedUnique,
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "site_ids", Value: 1}}, Options: options.Index().SetName("tenant_site_idx")},
		},
		r.treatments: {scopedUnique},
	}
	for coll, indexModels := range plan {
		if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
			return utils.Unavailable(fmt.Sprintf("failed to create %s indexes", coll.Name()), err)
		}
	}
	return nil
}
