package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// IdentityService maps already-verified external identities to people and
// role records. Role creation never happens implicitly: the collaborator and
// analyst login paths each ask for exactly one role, so an analyst email can
// never silently acquire a collaborator role or vice versa.
type IdentityService struct {
	people        repository.PersonRepository
	clients       repository.ClientRepository
	collaborators repository.CollaboratorRepository
	analysts      repository.AnalystRepository
	cfg           config.SupportConfig
	logger        *zap.Logger
}

// IdentityDependencies bundles repositories for the identity service.
type IdentityDependencies struct {
	PersonRepo       repository.PersonRepository
	ClientRepo       repository.ClientRepository
	CollaboratorRepo repository.CollaboratorRepository
	AnalystRepo      repository.AnalystRepository
}

// NewIdentityService constructs the service.
func NewIdentityService(cfg config.SupportConfig, deps IdentityDependencies, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		people:        deps.PersonRepo,
		clients:       deps.ClientRepo,
		collaborators: deps.CollaboratorRepo,
		analysts:      deps.AnalystRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// ResolveOrCreatePerson upserts the person keyed by (provider, provider_id),
// refreshing the cached display name and email on every login.
func (s *IdentityService) ResolveOrCreatePerson(ctx context.Context, identity domain.ExternalIdentity) (*domain.Person, error) {
	if identity.Provider == "" || identity.ProviderID == "" {
		return nil, apperrors.NewValidationError("provider and provider_id required", nil)
	}

	person := &domain.Person{
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
		Name:       strings.TrimSpace(identity.Name),
		Email:      strings.ToLower(strings.TrimSpace(identity.Email)),
	}
	if hd := strings.ToLower(strings.TrimSpace(identity.HostedDomain)); hd != "" {
		person.HostedDomain = &hd
	}

	if err := s.people.Upsert(ctx, person); err != nil {
		return nil, apperrors.MapError(err)
	}
	return person, nil
}

// EnsureCollaboratorRole finds or creates the collaborator role for a person.
// A corporate hosted domain wins; otherwise the configured fallback client
// takes the membership. The fallback client missing is a deployment defect.
func (s *IdentityService) EnsureCollaboratorRole(ctx context.Context, person *domain.Person) (*domain.Collaborator, error) {
	client, err := s.matchClient(ctx, person)
	if err != nil {
		return nil, err
	}

	existing, err := s.collaborators.GetByPersonAndClient(ctx, person.ID, client.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("assigning collaborator role",
		zap.String("person_id", person.ID),
		zap.String("client", client.Name))
	collaborator := &domain.Collaborator{PersonID: person.ID, ClientID: client.ID}
	if err := s.collaborators.Create(ctx, collaborator); err != nil {
		return nil, apperrors.MapError(err)
	}
	return collaborator, nil
}

func (s *IdentityService) matchClient(ctx context.Context, person *domain.Person) (*domain.Client, error) {
	if person.HostedDomain != nil {
		client, err := s.clients.GetByDomain(ctx, *person.HostedDomain)
		if err == nil {
			return client, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}

	client, err := s.clients.GetByName(ctx, s.cfg.FallbackClientName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewConfigurationError("fallback client '" + s.cfg.FallbackClientName + "' does not exist")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// EnsureAnalystRole finds or creates the analyst role, fixed at level 1 on
// creation. Level changes are an administrative action elsewhere.
func (s *IdentityService) EnsureAnalystRole(ctx context.Context, person *domain.Person) (*domain.Analyst, error) {
	existing, err := s.analysts.GetByPersonID(ctx, person.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("assigning analyst role", zap.String("person_id", person.ID))
	analyst := &domain.Analyst{PersonID: person.ID, Level: 1}
	if err := s.analysts.Create(ctx, analyst); err != nil {
		return nil, apperrors.MapError(err)
	}
	return analyst, nil
}

// DefaultAnalystOrSelf returns the caller's analyst id when the caller is an
// analyst, otherwise the configured default analyst. Nil is a valid result;
// an absent default is best-effort, not an error.
func (s *IdentityService) DefaultAnalystOrSelf(ctx context.Context, principal *auth.Principal) (*string, error) {
	if principal != nil && principal.Analyst != nil {
		id := principal.Analyst.ID
		return &id, nil
	}
	if s.cfg.DefaultAnalystID == "" {
		return nil, nil
	}

	analyst, err := s.analysts.GetByID(ctx, s.cfg.DefaultAnalystID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("configured default analyst not found",
			zap.String("analyst_id", s.cfg.DefaultAnalystID))
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &analyst.ID, nil
}
