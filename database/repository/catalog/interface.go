package catalogRepo

import (
	"context"

	"clinicbook/models"
)

// CatalogRepository is the tenant-scoped store of sites, professionals and treatments.
// Lookups of an id that belongs to another tenant return the same NotFound error as
// a missing id.
type CatalogRepository interface {
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
	UpsertTenant(ctx context.Context, tenant *models.Tenant) error

	GetSite(ctx context.Context, tenantID, siteID string) (*models.Site, error)
	ListSites(ctx context.Context, tenantID string) ([]models.Site, error)
	CreateSite(ctx context.Context, site *models.Site) error

	GetProfessional(ctx context.Context, tenantID, professionalID string) (*models.Professional, error)
	// ListProfessionals returns the tenant's professionals; a non-empty siteID keeps only those working there.
	ListProfessionals(ctx context.Context, tenantID, siteID string) ([]models.Professional, error)
	CreateProfessional(ctx context.Context, professional *models.Professional) error

	GetTreatment(ctx context.Context, tenantID, treatmentID string) (*models.Treatment, error)
	ListTreatments(ctx context.Context, tenantID string) ([]models.Treatment, error)
	CreateTreatment(ctx context.Context, treatment *models.Treatment) error
}
