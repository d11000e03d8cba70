package catalogRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clinicbook/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 5 * time.Second

// CachedCatalog is a read-through Redis cache in front of another CatalogRepository.
// Single lookups are cached; listings and writes go to the store, and writes
// invalidate the affected keys. Cache failures degrade to store reads.
type CachedCatalog struct {
	store  CatalogRepository
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewCachedCatalog returns store itself when client is nil.
func NewCachedCatalog(store CatalogRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) CatalogRepository {
	if client == nil {
		return store
	}
	return &CachedCatalog{store: store, client: client, ttl: ttl, logger: logger}
}

func cacheKey(tenantID, kind, id string) string {
	return fmt.Sprintf("catalog:%s:%s:%s", tenantID, kind, id)
}

// readThrough serves key from Redis, or loads it once per key across concurrent callers.
func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func(context.Context) (*T, error)) (*T, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// shared by every waiter on key, so one caller's cancellation must not end it
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		item, err := load(lctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(item); err == nil {
			if err := c.client.Set(lctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return item, nil
	})
	if err != nil {
		return nil, err
	}
	item := *v.(*T)
	return &item, nil
}

func (c *CachedCatalog) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedCatalog) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	return readThrough(ctx, c, cacheKey(tenantID, "tenant", tenantID), func(ctx context.Context) (*models.Tenant, error) {
		return c.store.GetTenant(ctx, tenantID)
	})
}

func (c *CachedCatalog) UpsertTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := c.store.UpsertTenant(ctx, tenant); err != nil {
		return err
	}
	c.invalidate(ctx, cacheKey(tenant.ID, "tenant", tenant.ID))
	return nil
}

func (c *CachedCatalog) GetSite(ctx context.Context, tenantID, siteID string) (*models.Site, error) {
	return readThrough(ctx, c, cacheKey(tenantID, "site", siteID), func(ctx context.Context) (*models.Site, error) {
		return c.store.GetSite(ctx, tenantID, siteID)
	})
}

func (c *CachedCatalog) ListSites(ctx context.Context, tenantID string) ([]models.Site, error) {
	return c.store.ListSites(ctx, tenantID)
}

func (c *CachedCatalog) CreateSite(ctx context.Context, site *models.Site) error {
	if err := c.store.CreateSite(ctx, site); err != nil {
		return err
	}
	c.invalidate(ctx, cacheKey(site.TenantID, "site", site.ID))
	return nil
}

func (c *CachedCatalog) GetProfessional(ctx context.Context, tenantID, professionalID string) (*models.Professional, error) {
	return readThrough(ctx, c, cacheKey(tenantID, "professional", professionalID), func(ctx context.Context) (*models.Professional, error) {
		return c.store.GetProfessional(ctx, tenantID, professionalID)
	})
}

func (c *CachedCatalog) ListProfessionals(ctx context.Context, tenantID, siteID string) ([]models.Professional, error) {
	return c.store.ListProfessionals(ctx, tenantID, siteID)
}

func (c *CachedCatalog) CreateProfessional(ctx context.Context, professional *models.Professional) error {
	if err := c.store.CreateProfessional(ctx, professional); err != nil {
		return err
	}
	c.invalidate(ctx, cacheKey(professional.TenantID, "professional", professional.ID))
	return nil
}

func (c *CachedCatalog) GetTreatment(ctx context.Context, tenantID, treatmentID string) (*models.Treatment, error) {
	return readThrough(ctx, c, cacheKey(tenantID, "treatment", treatmentID), func(ctx context.Context) (*models.Treatment, error) {
		return c.store.GetTreatment(ctx, tenantID, treatmentID)
	})
}

func (c *CachedCatalog) ListTreatments(ctx context.Context, tenantID string) ([]models.Treatment, error) {
	return c.store.ListTreatments(ctx, tenantID)
}

func (c *CachedCatalog) CreateTreatment(ctx context.Context, treatment *models.Treatment) error {
	if err := c.store.CreateTreatment(ctx, treatment); err != nil {
		return err
	}
	c.invalidate(ctx, cacheKey(treatment.TenantID, "treatment", treatment.ID))
	return nil
}
