package catalogRepo

import (
	"context"
	"testing"
	"time"

	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

func seed(t *testing.T) *MemoryCatalog {
	t.Helper()
	ctx := context.Background()
	c := NewMemoryCatalog()
	for _, tenant := range []string{"tenant-a", "tenant-b"} {
		if err := c.CreateSite(ctx, &models.Site{ID: "site-1", TenantID: tenant, Name: "Main"}); err != nil {
			t.Fatalf("CreateSite: %v", err)
		}
	}
	profs := []models.Professional{
		{ID: "p2", TenantID: "tenant-a", Name: "Bea", SiteIDs: []string{"site-1"}},
		{ID: "p1", TenantID: "tenant-a", Name: "Ana", SiteIDs: []string{"site-1", "site-2"}},
		{ID: "p3", TenantID: "tenant-a", Name: "Cleo", SiteIDs: []string{"site-2"}},
		{ID: "pb", TenantID: "tenant-b", Name: "Other", SiteIDs: []string{"site-1"}},
	}
	for i := range profs {
		if err := c.CreateProfessional(ctx, &profs[i]); err != nil {
			t.Fatalf("CreateProfessional: %v", err)
		}
	}
	if err := c.CreateTreatment(ctx, &models.Treatment{ID: "t1", TenantID: "tenant-a", Name: "Cleaning", DurationMinutes: 30}); err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}
	return c
}

func TestMemoryCatalogTenantScoping(t *testing.T) {
	c := seed(t)
	ctx := context.Background()

	if _, err := c.GetTreatment(ctx, "tenant-a", "t1"); err != nil {
		t.Fatalf("GetTreatment(own tenant)=%v", err)
	}
	if _, err := c.GetTreatment(ctx, "tenant-b", "t1"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("GetTreatment(other tenant)=%v, want NotFound", err)
	}
	if _, err := c.GetProfessional(ctx, "tenant-b", "p1"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("GetProfessional(other tenant)=%v, want NotFound", err)
	}
	if list, _ := c.ListTreatments(ctx, "tenant-b"); len(list) != 0 {
		t.Fatalf("ListTreatments(tenant-b)=%v, want empty", list)
	}
}

func TestMemoryCatalogListProfessionalsBySite(t *testing.T) {
	c := seed(t)
	list, err := c.ListProfessionals(context.Background(), "tenant-a", "site-1")
	if err != nil {
		t.Fatalf("ListProfessionals: %v", err)
	}
	if len(list) != 2 || list[0].ID != "p1" || list[1].ID != "p2" {
		t.Fatalf("ListProfessionals(site-1)=%v, want [p1 p2]", list)
	}
	all, _ := c.ListProfessionals(context.Background(), "tenant-a", "")
	if len(all) != 3 {
		t.Fatalf("ListProfessionals(all)=%d, want 3", len(all))
	}
}

func TestMemoryCatalogDuplicateIsConflict(t *testing.T) {
	c := seed(t)
	err := c.CreateTreatment(context.Background(), &models.Treatment{ID: "t1", TenantID: "tenant-a", Name: "Again"})
	if !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("CreateTreatment(duplicate)=%v, want Conflict", err)
	}
	// same id in another tenant is a different entity
	if err := c.CreateTreatment(context.Background(), &models.Treatment{ID: "t1", TenantID: "tenant-b", Name: "Own"}); err != nil {
		t.Fatalf("CreateTreatment(other tenant)=%v", err)
	}
}

func TestMemoryCatalogTenantUpsert(t *testing.T) {
	c := NewMemoryCatalog()
	ctx := context.Background()
	if _, err := c.GetTenant(ctx, "tenant-a"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("GetTenant(missing)=%v, want NotFound", err)
	}
	tenant := &models.Tenant{ID: "tenant-a", Name: "Clinic", Timezone: "UTC", UpdatedAt: time.Now()}
	if err := c.UpsertTenant(ctx, tenant); err != nil {
		t.Fatalf("UpsertTenant: %v", err)
	}
	tenant.Name = "Clinic Renamed"
	_ = c.UpsertTenant(ctx, tenant)
	got, err := c.GetTenant(ctx, "tenant-a")
	if err != nil || got.Name != "Clinic Renamed" {
		t.Fatalf("GetTenant()=%v, %v", got, err)
	}
}

func TestNewCachedCatalogWithoutRedisIsPassthrough(t *testing.T) {
	store := NewMemoryCatalog()
	if got := NewCachedCatalog(store, nil, time.Minute, zap.NewNop()); got != CatalogRepository(store) {
		t.Fatalf("NewCachedCatalog(nil client) wrapped the store")
	}
	if k := cacheKey("tenant-a", "treatment", "t1"); k != "catalog:tenant-a:treatment:t1" {
		t.Fatalf("cacheKey=%q", k)
	}
}
