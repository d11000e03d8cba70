package catalogRepo

import (
	"context"
	"time"

	"clinicbook/database"
	"clinicbook/models"
	"clinicbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalog implements CatalogRepository using MongoDB.
type MongoCatalog struct {
	tenants       *mongo.Collection
	sites         *mongo.Collection
	professionals *mongo.Collection
	treatments    *mongo.Collection
	timeout       time.Duration
	backoff       time.Duration
}

// NewMongoCatalog wires the catalog collections of db and ensures their indexes.
func NewMongoCatalog(db *mongo.Database, timeout, backoff time.Duration) (*MongoCatalog, error) {
	repo := &MongoCatalog{
		tenants:       db.Collection("tenants"),
		sites:         db.Collection("sites"),
		professionals: db.Collection("professionals"),
		treatments:    db.Collection("treatments"),
		timeout:       timeout,
		backoff:       backoff,
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func scoped(tenantID, id string) bson.M {
	return bson.M{"tenant_id": tenantID, "id": id}
}

func (r *MongoCatalog) run(ctx context.Context, what string, op func(ctx context.Context) error) error {
	return database.WithRetry(ctx, r.timeout, r.backoff, func(ctx context.Context) error {
		return database.Classify(op(ctx), what)
	})
}

func findOne[T any](ctx context.Context, r *MongoCatalog, coll *mongo.Collection, filter bson.M, what string) (*T, error) {
	var out T
	err := r.run(ctx, what, func(ctx context.Context) error {
		return coll.FindOne(ctx, filter).Decode(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, r *MongoCatalog, coll *mongo.Collection, filter bson.M, sortKey string, what string) ([]T, error) {
	out := []T{}
	err := r.run(ctx, what, func(ctx context.Context) error {
		cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: sortKey, Value: 1}}))
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		out = out[:0]
		return cursor.All(ctx, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoCatalog) insert(ctx context.Context, coll *mongo.Collection, doc interface{}, what string) error {
	return r.run(ctx, what, func(ctx context.Context) error {
		_, err := coll.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return utils.Conflict(what + " already exists")
		}
		return err
	})
}

func (r *MongoCatalog) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	return findOne[models.Tenant](ctx, r, r.tenants, bson.M{"id": tenantID}, "tenant")
}

func (r *MongoCatalog) UpsertTenant(ctx context.Context, tenant *models.Tenant) error {
	return r.run(ctx, "tenant", func(ctx context.Context) error {
		_, err := r.tenants.ReplaceOne(ctx, bson.M{"id": tenant.ID}, tenant, options.Replace().SetUpsert(true))
		return err
	})
}

func (r *MongoCatalog) GetSite(ctx context.Context, tenantID, siteID string) (*models.Site, error) {
	return findOne[models.Site](ctx, r, r.sites, scoped(tenantID, siteID), "site")
}

func (r *MongoCatalog) ListSites(ctx context.Context, tenantID string) ([]models.Site, error) {
	return findAll[models.Site](ctx, r, r.sites, bson.M{"tenant_id": tenantID}, "id", "site")
}

func (r *MongoCatalog) CreateSite(ctx context.Context, site *models.Site) error {
	return r.insert(ctx, r.sites, site, "site")
}

func (r *MongoCatalog) GetProfessional(ctx context.Context, tenantID, professionalID string) (*models.Professional, error) {
	return findOne[models.Professional](ctx, r, r.professionals, scoped(tenantID, professionalID), "professional")
}

func (r *MongoCatalog) ListProfessionals(ctx context.Context, tenantID, siteID string) ([]models.Professional, error) {
	filter := bson.M{"tenant_id": tenantID}
	if siteID != "" {
		filter["site_ids"] = siteID
	}
	return findAll[models.Professional](ctx, r, r.professionals, filter, "id", "professional")
}

func (r *MongoCatalog) CreateProfessional(ctx context.Context, professional *models.Professional) error {
	return r.insert(ctx, r.professionals, professional, "professional")
}

func (r *MongoCatalog) GetTreatment(ctx context.Context, tenantID, treatmentID string) (*models.Treatment, error) {
	return findOne[models.Treatment](ctx, r, r.treatments, scoped(tenantID, treatmentID), "treatment")
}

func (r *MongoCatalog) ListTreatments(ctx context.Context, tenantID string) ([]models.Treatment, error) {
	return findAll[models.Treatment](ctx, r, r.treatments, bson.M{"tenant_id": tenantID}, "name", "treatment")
}

func (r *MongoCatalog) CreateTreatment(ctx context.Context, treatment *models.Treatment) error {
	return r.insert(ctx, r.treatments, treatment, "treatment")
}
