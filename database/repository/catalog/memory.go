package catalogRepo

import (
	"context"
	"slices"
	"strings"
	"sync"

	"clinicbook/models"
	"clinicbook/utils"
)

type tenantKey struct {
	tenantID string
	id       string
}

// MemoryCatalog keeps the catalog in process memory. Used by tests and local runs.
type MemoryCatalog struct {
	mu            sync.RWMutex
	tenants       map[string]models.Tenant
	sites         map[tenantKey]models.Site
	professionals map[tenantKey]models.Professional
	treatments    map[tenantKey]models.Treatment
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		tenants:       map[string]models.Tenant{},
		sites:         map[tenantKey]models.Site{},
		professionals: map[tenantKey]models.Professional{},
		treatments:    map[tenantKey]models.Treatment{},
	}
}

func (m *MemoryCatalog) GetTenant(_ context.Context, tenantID string) (*models.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tenants[tenantID]
	if !ok {
		return nil, utils.NotFound("tenant not found")
	}
	return &t, nil
}

func (m *MemoryCatalog) UpsertTenant(_ context.Context, tenant *models.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[tenant.ID] = *tenant
	return nil
}

func (m *MemoryCatalog) GetSite(_ context.Context, tenantID, siteID string) (*models.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sites[tenantKey{tenantID, siteID}]
	if !ok {
		return nil, utils.NotFound("site not found")
	}
	return &s, nil
}

func (m *MemoryCatalog) ListSites(_ context.Context, tenantID string) ([]models.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Site{}
	for k, s := range m.sites {
		if k.tenantID == tenantID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.Site) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryCatalog) CreateSite(_ context.Context, site *models.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey{site.TenantID, site.ID}
	if _, exists := m.sites[k]; exists {
		return utils.Conflict("site already exists")
	}
	m.sites[k] = *site
	return nil
}

func (m *MemoryCatalog) GetProfessional(_ context.Context, tenantID, professionalID string) (*models.Professional, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.professionals[tenantKey{tenantID, professionalID}]
	if !ok {
		return nil, utils.NotFound("professional not found")
	}
	return &p, nil
}

func (m *MemoryCatalog) ListProfessionals(_ context.Context, tenantID, siteID string) ([]models.Professional, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Professional{}
	for k, p := range m.professionals {
		if k.tenantID != tenantID || (siteID != "" && !p.WorksAt(siteID)) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Professional) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (m *MemoryCatalog) CreateProfessional(_ context.Context, professional *models.Professional) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey{professional.TenantID, professional.ID}
	if _, exists := m.professionals[k]; exists {
		return utils.Conflict("professional already exists")
	}
	m.professionals[k] = *professional
	return nil
}

func (m *MemoryCatalog) GetTreatment(_ context.Context, tenantID, treatmentID string) (*models.Treatment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.treatments[tenantKey{tenantID, treatmentID}]
	if !ok {
		return nil, utils.NotFound("treatment not found")
	}
	return &t, nil
}

func (m *MemoryCatalog) ListTreatments(_ context.Context, tenantID string) ([]models.Treatment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Treatment{}
	for k, t := range m.treatments {
		if k.tenantID == tenantID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.Treatment) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *MemoryCatalog) CreateTreatment(_ context.Context, treatment *models.Treatment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := tenantKey{treatment.TenantID, treatment.ID}
	if _, exists := m.treatments[k]; exists {
		return utils.Conflict("treatment already exists")
	}
	m.treatments[k] = *treatment
	return nil
}
