package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

type identityFixture struct {
	service       *IdentityService
	clients       *fakeClientRepo
	collaborators *fakeCollaboratorRepo
	analysts      *fakeAnalystRepo
}

func newIdentityFixture(cfg config.SupportConfig) *identityFixture {
	clients := newFakeClientRepo()
	collaborators := newFakeCollaboratorRepo()
	analysts := newFakeAnalystRepo()
	svc := NewIdentityService(cfg, IdentityDependencies{
		PersonRepo:       newFakePersonRepo(),
		ClientRepo:       clients,
		CollaboratorRepo: collaborators,
		AnalystRepo:      analysts,
	}, zap.NewNop())
	return &identityFixture{service: svc, clients: clients, collaborators: collaborators, analysts: analysts}
}

func TestResolveOrCreatePersonNormalizesIdentity(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{})

	person, err := fx.service.ResolveOrCreatePerson(context.Background(), domain.ExternalIdentity{
		Provider:     "google",
		ProviderID:   "123",
		Email:        "  Dana@ACME.test ",
		Name:         "  Dana  ",
		HostedDomain: "ACME.test",
	})
	if err != nil {
		t.Fatalf("ResolveOrCreatePerson: %v", err)
	}
	if person.Email != "dana@acme.test" {
		t.Fatalf("email not normalized: %q", person.Email)
	}
	if person.Name != "Dana" {
		t.Fatalf("name not trimmed: %q", person.Name)
	}
	if person.HostedDomain == nil || *person.HostedDomain != "acme.test" {
		t.Fatalf("hosted domain not normalized: %v", person.HostedDomain)
	}

	again, err := fx.service.ResolveOrCreatePerson(context.Background(), domain.ExternalIdentity{
		Provider:   "google",
		ProviderID: "123",
		Email:      "dana@acme.test",
		Name:       "Dana R",
	})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != person.ID {
		t.Fatalf("repeated login must resolve the same person: %s vs %s", again.ID, person.ID)
	}
}

func TestResolveOrCreatePersonRequiresProvider(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{})

	_, err := fx.service.ResolveOrCreatePerson(context.Background(), domain.ExternalIdentity{Email: "x@y.test"})
	if code := errorCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", code)
	}
}

func TestEnsureCollaboratorRolePrefersHostedDomain(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{FallbackClientName: "Gmail"})
	fx.clients.clientsByDomain["acme.test"] = &domain.Client{ID: "client-acme", Name: "Acme"}
	fx.clients.clientsByName["Gmail"] = &domain.Client{ID: "client-gmail", Name: "Gmail"}

	hd := "acme.test"
	collaborator, err := fx.service.EnsureCollaboratorRole(context.Background(), &domain.Person{ID: "person-1", HostedDomain: &hd})
	if err != nil {
		t.Fatalf("EnsureCollaboratorRole: %v", err)
	}
	if collaborator.ClientID != "client-acme" {
		t.Fatalf("expected domain tenant, got %s", collaborator.ClientID)
	}

	// Second login reuses the membership instead of creating another row.
	again, err := fx.service.EnsureCollaboratorRole(context.Background(), &domain.Person{ID: "person-1", HostedDomain: &hd})
	if err != nil {
		t.Fatalf("second EnsureCollaboratorRole: %v", err)
	}
	if again.ID != collaborator.ID {
		t.Fatalf("membership duplicated: %s vs %s", again.ID, collaborator.ID)
	}
}

func TestEnsureCollaboratorRoleFallsBackToConfiguredTenant(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{FallbackClientName: "Gmail"})
	fx.clients.clientsByName["Gmail"] = &domain.Client{ID: "client-gmail", Name: "Gmail"}

	collaborator, err := fx.service.EnsureCollaboratorRole(context.Background(), &domain.Person{ID: "person-1"})
	if err != nil {
		t.Fatalf("EnsureCollaboratorRole: %v", err)
	}
	if collaborator.ClientID != "client-gmail" {
		t.Fatalf("expected fallback tenant, got %s", collaborator.ClientID)
	}
}

func TestEnsureCollaboratorRoleMissingFallbackIsConfigurationError(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{FallbackClientName: "Gmail"})

	_, err := fx.service.EnsureCollaboratorRole(context.Background(), &domain.Person{ID: "person-1"})
	if code := errorCode(t, err); code != "CONFIGURATION_ERROR" {
		t.Fatalf("expected CONFIGURATION_ERROR, got %s", code)
	}
}

func TestEnsureAnalystRoleStartsAtLevelOne(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{})

	analyst, err := fx.service.EnsureAnalystRole(context.Background(), &domain.Person{ID: "person-1"})
	if err != nil {
		t.Fatalf("EnsureAnalystRole: %v", err)
	}
	if analyst.Level != 1 {
		t.Fatalf("new analyst must start at level 1, got %d", analyst.Level)
	}

	fx.analysts.analysts[analyst.ID].Level = 2
	again, err := fx.service.EnsureAnalystRole(context.Background(), &domain.Person{ID: "person-1"})
	if err != nil {
		t.Fatalf("second EnsureAnalystRole: %v", err)
	}
	if again.Level != 2 {
		t.Fatalf("existing role must be reused, got level %d", again.Level)
	}
}

func TestDefaultAnalystOrSelf(t *testing.T) {
	fx := newIdentityFixture(config.SupportConfig{DefaultAnalystID: "analyst-9"})
	fx.analysts.put(domain.Analyst{ID: "analyst-9", Level: 1})

	id, err := fx.service.DefaultAnalystOrSelf(context.Background(), analystPrincipal("analyst-1", 2))
	if err != nil || id == nil || *id != "analyst-1" {
		t.Fatalf("analyst caller must resolve to self, got %v (%v)", id, err)
	}

	id, err = fx.service.DefaultAnalystOrSelf(context.Background(), collaboratorPrincipal("collab-1", "client-1"))
	if err != nil || id == nil || *id != "analyst-9" {
		t.Fatalf("collaborator must resolve to default analyst, got %v (%v)", id, err)
	}

	fx.analysts.analysts = map[string]*domain.Analyst{}
	id, err = fx.service.DefaultAnalystOrSelf(context.Background(), collaboratorPrincipal("collab-1", "client-1"))
	if err != nil || id != nil {
		t.Fatalf("missing default analyst must be nil/nil, got %v (%v)", id, err)
	}
}
