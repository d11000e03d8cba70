package catalog

import (
	"context"
	"strings"
	"time"

	catalogRepo "clinicbook/database/repository/catalog"
	"clinicbook/models"
	"clinicbook/services/auth"
	"clinicbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService exposes the tenant's treatments, professionals, sites and profile.
type CatalogService interface {
	ListTreatments(ctx context.Context, session *models.Session) ([]models.Treatment, error)
	CreateTreatment(ctx context.Context, session *models.Session, input models.Treatment) (*models.Treatment, error)
	ListProfessionals(ctx context.Context, session *models.Session, siteID string) ([]models.Professional, error)
	CreateProfessional(ctx context.Context, session *models.Session, input models.Professional) (*models.Professional, error)
	ListSites(ctx context.Context, session *models.Session) ([]models.Site, error)
	CreateSite(ctx context.Context, session *models.Session, input models.Site) (*models.Site, error)
	GetTenant(ctx context.Context, session *models.Session) (*models.Tenant, error)
	UpsertTenant(ctx context.Context, session *models.Session, input models.Tenant) (*models.Tenant, error)
}

type DefaultCatalogService struct {
	Repo   catalogRepo.CatalogRepository
	Now    func() time.Time
	Logger *zap.Logger
}

func NewCatalogService(repo catalogRepo.CatalogRepository, logger *zap.Logger) *DefaultCatalogService {
	return &DefaultCatalogService{Repo: repo, Now: time.Now, Logger: logger}
}

func (s *DefaultCatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// allow runs the gate against the caller's own tenant; catalog requests never
// name another tenant.
func allow(session *models.Session, op auth.Operation) error {
	if session == nil {
		return utils.Unauthenticated("missing session")
	}
	_, err := auth.Authorize(session, op, session.TenantID)
	return err
}

func (s *DefaultCatalogService) ListTreatments(ctx context.Context, session *models.Session) ([]models.Treatment, error) {
	if err := allow(session, auth.OpListTreatments); err != nil {
		return nil, err
	}
	return s.Repo.ListTreatments(ctx, session.TenantID)
}

func (s *DefaultCatalogService) CreateTreatment(ctx context.Context, session *models.Session, input models.Treatment) (*models.Treatment, error) {
	if err := allow(session, auth.OpCreateTreatment); err != nil {
		return nil, err
	}
	t := input
	t.ID = uuid.New().String()
	t.TenantID = session.TenantID
	t.Name = strings.TrimSpace(t.Name)
	t.CreatedAt = s.now()
	if err := utils.ValidateStruct(&t); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateTreatment(ctx, &t); err != nil {
		return nil, err
	}
	s.logger().Info("treatment created", zap.String("tenant_id", t.TenantID), zap.String("treatment_id", t.ID))
	return &t, nil
}

func (s *DefaultCatalogService) ListProfessionals(ctx context.Context, session *models.Session, siteID string) ([]models.Professional, error) {
	if err := allow(session, auth.OpListProfessionals); err != nil {
		return nil, err
	}
	return s.Repo.ListProfessionals(ctx, session.TenantID, siteID)
}

func (s *DefaultCatalogService) CreateProfessional(ctx context.Context, session *models.Session, input models.Professional) (*models.Professional, error) {
	if err := allow(session, auth.OpCreateProfessional); err != nil {
		return nil, err
	}
	p := input
	p.ID = uuid.New().String()
	p.TenantID = session.TenantID
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Status == "" {
		p.Status = models.ProfessionalActive
	}
	p.CreatedAt = s.now()
	if err := utils.ValidateStruct(&p); err != nil {
		return nil, err
	}
	if !models.ValidWorkingHours(p.WorkingHours) {
		return nil, utils.Validation("working_hours contains an invalid or overlapping interval")
	}

	// references must resolve inside the caller's tenant
	for _, id := range p.SiteIDs {
		if _, err := s.Repo.GetSite(ctx, p.TenantID, id); err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, utils.Validation("unknown site " + id)
			}
			return nil, err
		}
	}
	for _, id := range p.TreatmentIDs {
		if _, err := s.Repo.GetTreatment(ctx, p.TenantID, id); err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, utils.Validation("unknown treatment " + id)
			}
			return nil, err
		}
	}

	if err := s.Repo.CreateProfessional(ctx, &p); err != nil {
		return nil, err
	}
	s.logger().Info("professional created", zap.String("tenant_id", p.TenantID), zap.String("professional_id", p.ID))
	return &p, nil
}

func (s *DefaultCatalogService) ListSites(ctx context.Context, session *models.Session) ([]models.Site, error) {
	if err := allow(session, auth.OpListSites); err != nil {
		return nil, err
	}
	return s.Repo.ListSites(ctx, session.TenantID)
}

func (s *DefaultCatalogService) CreateSite(ctx context.Context, session *models.Session, input models.Site) (*models.Site, error) {
	if err := allow(session, auth.OpCreateSite); err != nil {
		return nil, err
	}
	site := input
	site.ID = uuid.New().String()
	site.TenantID = session.TenantID
	site.Name = strings.TrimSpace(site.Name)
	site.CreatedAt = s.now()
	if err := utils.ValidateStruct(&site); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateSite(ctx, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// GetTenant returns the caller's tenant profile. A tenant nobody configured yet
// reads as a default profile instead of NotFound.
func (s *DefaultCatalogService) GetTenant(ctx context.Context, session *models.Session) (*models.Tenant, error) {
	if err := allow(session, auth.OpReadTenant); err != nil {
		return nil, err
	}
	t, err := s.Repo.GetTenant(ctx, session.TenantID)
	if utils.IsKind(err, utils.KindNotFound) {
		return &models.Tenant{ID: session.TenantID, Timezone: models.DefaultTimezone, Status: "active"}, nil
	}
	return t, err
}

func (s *DefaultCatalogService) UpsertTenant(ctx context.Context, session *models.Session, input models.Tenant) (*models.Tenant, error) {
	if err := allow(session, auth.OpWriteTenant); err != nil {
		return nil, err
	}
	now := s.now()
	t := input
	t.ID = session.TenantID
	t.Name = strings.TrimSpace(t.Name)
	if t.Timezone == "" {
		t.Timezone = models.DefaultTimezone
	}
	if t.Status == "" {
		t.Status = "active"
	}
	t.CreatedAt = now
	if existing, err := s.Repo.GetTenant(ctx, t.ID); err == nil {
		t.CreatedAt = existing.CreatedAt
	} else if !utils.IsKind(err, utils.KindNotFound) {
		return nil, err
	}
	t.UpdatedAt = now
	if err := utils.ValidateStruct(&t); err != nil {
		return nil, err
	}
	if err := s.Repo.UpsertTenant(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *DefaultCatalogService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
