package catalog

import (
	"context"
	"testing"
	"time"

	catalogRepo "clinicbook/database/repository/catalog"
	"clinicbook/models"
	"clinicbook/utils"
)

func admin(tenant string) *models.Session {
	return &models.Session{Subject: "root", Email: "root@clinic.test", TenantID: tenant, Roles: []models.Role{models.RoleAdmin}}
}

func reception(tenant string) *models.Session {
	return &models.Session{Subject: "desk", Email: "desk@clinic.test", TenantID: tenant, Roles: []models.Role{models.RoleReception}}
}

func newService() *DefaultCatalogService {
	fixed := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return &DefaultCatalogService{Repo: catalogRepo.NewMemoryCatalog(), Now: func() time.Time { return fixed }}
}

func TestCreateTreatment(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input models.Treatment
		want  utils.ErrorKind
	}{
		{"short name", models.Treatment{Name: "ab", DurationMinutes: 30}, utils.KindValidation},
		{"too short", models.Treatment{Name: "Cleaning", DurationMinutes: 4}, utils.KindValidation},
		{"too long", models.Treatment{Name: "Cleaning", DurationMinutes: 481}, utils.KindValidation},
		{"negative buffer", models.Treatment{Name: "Cleaning", DurationMinutes: 30, BufferMinutes: -5}, utils.KindValidation},
		{"negative price", models.Treatment{Name: "Cleaning", DurationMinutes: 30, Price: -1}, utils.KindValidation},
	}
	for _, tc := range cases {
		if _, err := svc.CreateTreatment(ctx, admin("tenant-a"), tc.input); !utils.IsKind(err, tc.want) {
			t.Fatalf("CreateTreatment(%s)=%v, want %s", tc.name, err, tc.want)
		}
	}

	_, err := svc.CreateTreatment(ctx, reception("tenant-a"), models.Treatment{Name: "Cleaning", DurationMinutes: 30})
	if !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("CreateTreatment(reception)=%v, want Forbidden", err)
	}

	got, err := svc.CreateTreatment(ctx, admin("tenant-a"), models.Treatment{TenantID: "tenant-b", Name: " Cleaning ", DurationMinutes: 30, BufferMinutes: 10})
	if err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}
	if got.TenantID != "tenant-a" || got.ID == "" || got.Name != "Cleaning" {
		t.Fatalf("CreateTreatment=%+v", got)
	}

	list, err := svc.ListTreatments(ctx, reception("tenant-a"))
	if err != nil || len(list) != 1 {
		t.Fatalf("ListTreatments=%v, %v", list, err)
	}
	list, _ = svc.ListTreatments(ctx, reception("tenant-b"))
	if len(list) != 0 {
		t.Fatalf("tenant-b sees %d treatments", len(list))
	}
}

func TestCreateProfessionalChecksReferences(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	site, err := svc.CreateSite(ctx, admin("tenant-a"), models.Site{Name: "Main"})
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	foreign, err := svc.CreateSite(ctx, admin("tenant-b"), models.Site{Name: "Other"})
	if err != nil {
		t.Fatalf("CreateSite: %v", err)
	}
	treatment, err := svc.CreateTreatment(ctx, admin("tenant-a"), models.Treatment{Name: "Cleaning", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("CreateTreatment: %v", err)
	}

	base := func() models.Professional {
		return models.Professional{
			Name: "Ana Ruiz", Email: "Ana@Clinic.test", SiteIDs: []string{site.ID}, TreatmentIDs: []string{treatment.ID},
			WorkingHours: []models.WorkingInterval{{Weekday: time.Monday, StartMinute: 540, EndMinute: 720}},
		}
	}

	bad := map[string]func(*models.Professional){
		"foreign site":      func(p *models.Professional) { p.SiteIDs = []string{foreign.ID} },
		"no site":           func(p *models.Professional) { p.SiteIDs = nil },
		"unknown treatment": func(p *models.Professional) { p.TreatmentIDs = []string{"nope"} },
		"bad email":         func(p *models.Professional) { p.Email = "ana" },
		"overlapping hours": func(p *models.Professional) {
			p.WorkingHours = append(p.WorkingHours, models.WorkingInterval{Weekday: time.Monday, StartMinute: 700, EndMinute: 800})
		},
		"inverted hours": func(p *models.Professional) {
			p.WorkingHours = []models.WorkingInterval{{Weekday: time.Monday, StartMinute: 720, EndMinute: 540}}
		},
	}
	for name, mutate := range bad {
		p := base()
		mutate(&p)
		if _, err := svc.CreateProfessional(ctx, admin("tenant-a"), p); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("CreateProfessional(%s)=%v, want Validation", name, err)
		}
	}

	created, err := svc.CreateProfessional(ctx, admin("tenant-a"), base())
	if err != nil {
		t.Fatalf("CreateProfessional: %v", err)
	}
	if created.Email != "ana@clinic.test" || created.Status != models.ProfessionalActive {
		t.Fatalf("CreateProfessional=%+v", created)
	}
	list, err := svc.ListProfessionals(ctx, reception("tenant-a"), site.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListProfessionals=%v, %v", list, err)
	}
}

func TestTenantProfile(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	got, err := svc.GetTenant(ctx, reception("tenant-a"))
	if err != nil || got.Timezone != models.DefaultTimezone || got.ID != "tenant-a" {
		t.Fatalf("GetTenant before setup=%+v, %v", got, err)
	}

	if _, err := svc.UpsertTenant(ctx, reception("tenant-a"), models.Tenant{Name: "Clinic"}); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("UpsertTenant(reception)=%v, want Forbidden", err)
	}
	if _, err := svc.UpsertTenant(ctx, admin("tenant-a"), models.Tenant{Name: "Clinic", ContactEmail: "a@b.co", Timezone: "Mars/Olympus"}); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("UpsertTenant(bad tz)=%v, want Validation", err)
	}
	saved, err := svc.UpsertTenant(ctx, admin("tenant-a"), models.Tenant{ID: "tenant-z", Name: "Clinic", ContactEmail: "a@b.co", Timezone: "Europe/Madrid"})
	if err != nil {
		t.Fatalf("UpsertTenant: %v", err)
	}
	if saved.ID != "tenant-a" {
		t.Fatalf("UpsertTenant wrote tenant %q", saved.ID)
	}
	got, _ = svc.GetTenant(ctx, reception("tenant-a"))
	if got.Timezone != "Europe/Madrid" || got.Location().String() != "Europe/Madrid" {
		t.Fatalf("GetTenant=%+v", got)
	}
}

func TestMissingSession(t *testing.T) {
	svc := newService()
	if _, err := svc.ListSites(context.Background(), nil); !utils.IsKind(err, utils.KindUnauthenticated) {
		t.Fatalf("ListSites(nil)=%v, want Unauthenticated", err)
	}
}
