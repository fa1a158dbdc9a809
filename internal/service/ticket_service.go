package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// diagnosisMaxLen bounds the stored diagnosis text on finalize, counted in
// runes so a cut never splits a multibyte character.
const diagnosisMaxLen = 5000

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// TicketService coordinates the ticket lifecycle: creation with its captured
// transcript, status and urgency mutation, and the collaborator/analyst reads.
type TicketService struct {
	tickets       repository.TicketRepository
	conversations repository.ConversationRepository
	clients       repository.ClientRepository
	identity      *IdentityService
	dispatcher    events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	ConversationRepo repository.ConversationRepository
	ClientRepo       repository.ClientRepository
	Identity         *IdentityService
	Dispatcher       events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject     string
	Type        domain.TicketType
	Level       domain.TicketLevel
	ServiceName string
	Messages    []domain.Message
}

// StatusUpdateInput describes a status mutation. Level is optional and applied
// after the status change when present.
type StatusUpdateInput struct {
	Status      domain.TicketStatus
	Description string
	Level       *domain.TicketLevel
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:       deps.TicketRepo,
		conversations: deps.ConversationRepo,
		clients:       deps.ClientRepo,
		identity:      deps.Identity,
		dispatcher:    deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for a collaborator, resolving the service by
// case-insensitive partial match against the client's contracted services.
// The ticket and its transcript land in one transaction.
func (s *TicketService) CreateTicket(ctx context.Context, principal *auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if principal == nil || principal.Collaborator == nil {
		return nil, apperrors.NewForbidden("collaborator role required")
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	if !domain.ValidType(input.Type) {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	if !domain.ValidLevel(input.Level) {
		return nil, apperrors.NewValidationError("unknown ticket level", map[string]any{"level": input.Level})
	}

	contracted, err := s.clients.ContractedServices(ctx, principal.Collaborator.ClientID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	service, ok := matchService(contracted, input.ServiceName)
	if !ok {
		return nil, apperrors.NewNotFound("service", map[string]any{"service_name": input.ServiceName})
	}

	analystID, err := s.identity.DefaultAnalystOrSelf(ctx, principal)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Subject:         subject,
		Type:            input.Type,
		Level:           input.Level,
		Status:          domain.TicketStatusAccepted,
		CollaboratorID:  principal.Collaborator.ID,
		ClientServiceID: service.ClientServiceID,
		AnalystID:       analystID,
	}
	if err := s.tickets.CreateWithConversation(ctx, ticket, input.Messages); err != nil {
		if errors.Is(err, repository.ErrConversationExists) {
			return nil, apperrors.NewConflict("conversation already archived for ticket",
				map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    collaboratorActor(principal.Collaborator.ID),
		Payload: events.TicketCreatedPayload{
			Subject:         ticket.Subject,
			Type:            ticket.Type,
			Level:           ticket.Level,
			ClientServiceID: ticket.ClientServiceID,
			AnalystID:       ticket.AnalystID,
			MessageCount:    len(input.Messages),
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventConversationArchived,
		TicketID: ticket.ID,
		Actor:    collaboratorActor(principal.Collaborator.ID),
	})
	return ticket, nil
}

// matchService picks the first contracted service whose name contains the
// requested name, ignoring case. "GeoPoint" matches "GeoPoint Platform".
func matchService(contracted []domain.ContractedService, name string) (domain.ContractedService, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return domain.ContractedService{}, false
	}
	for _, svc := range contracted {
		if strings.Contains(strings.ToLower(svc.Name), needle) {
			return svc, true
		}
	}
	return domain.ContractedService{}, false
}

// UpdateStatus applies a status change by the assigned analyst. Transitions
// are unrestricted except that finalizing requires a non-empty description,
// which becomes the diagnosis and stamps closed_at. Neither closed_at nor the
// diagnosis is ever cleared here.
func (s *TicketService) UpdateStatus(ctx context.Context, principal *auth.Principal, ticketID int64, input StatusUpdateInput) (*domain.Ticket, error) {
	if principal == nil || principal.Analyst == nil {
		return nil, apperrors.NewForbidden("analyst role required")
	}
	if !domain.ValidStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": input.Status})
	}
	if input.Level != nil && !domain.ValidLevel(*input.Level) {
		return nil, apperrors.NewValidationError("unknown ticket level", map[string]any{"level": *input.Level})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.AnalystID == nil || *ticket.AnalystID != principal.Analyst.ID {
		return nil, apperrors.NewForbidden("ticket not assigned to caller")
	}

	var diagnosis string
	if input.Status == domain.TicketStatusFinalized {
		diagnosis = strings.TrimSpace(input.Description)
		if diagnosis == "" {
			return nil, apperrors.NewValidationError("description required to finalize", nil)
		}
		diagnosis = truncateRunes(diagnosis, diagnosisMaxLen)
	}

	oldStatus := ticket.Status
	oldLevel := ticket.Level
	ticket.Status = input.Status
	if input.Status == domain.TicketStatusFinalized {
		ticket.Diagnosis = &diagnosis
		if ticket.ClosedAt == nil {
			now := time.Now()
			ticket.ClosedAt = &now
		}
	}
	if input.Level != nil {
		ticket.Level = *input.Level
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    analystActor(principal.Analyst.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Diagnosis: diagnosis,
		},
	})
	if input.Level != nil && oldLevel != ticket.Level {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketLevelChanged,
			TicketID: ticket.ID,
			Actor:    analystActor(principal.Analyst.ID),
			Payload: events.TicketLevelChangedPayload{
				OldLevel: oldLevel,
				NewLevel: ticket.Level,
			},
		})
	}
	return ticket, nil
}

// UpdateLevel overwrites the urgency level unconditionally, downgrade included.
func (s *TicketService) UpdateLevel(ctx context.Context, principal *auth.Principal, ticketID int64, level domain.TicketLevel) (*domain.Ticket, error) {
	if principal == nil || principal.Analyst == nil {
		return nil, apperrors.NewForbidden("analyst role required")
	}
	if !domain.ValidLevel(level) {
		return nil, apperrors.NewValidationError("unknown ticket level", map[string]any{"level": level})
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	oldLevel := ticket.Level
	ticket.Level = level
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if oldLevel != level {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketLevelChanged,
			TicketID: ticket.ID,
			Actor:    analystActor(principal.Analyst.ID),
			Payload:  events.TicketLevelChangedPayload{OldLevel: oldLevel, NewLevel: level},
		})
	}
	return ticket, nil
}

// FindByOwnerAndID is a collaborator self-service read. An unresolvable owner
// or missing ticket yields nil, not an authorization fault.
func (s *TicketService) FindByOwnerAndID(ctx context.Context, principal *auth.Principal, ticketID int64) (*domain.Ticket, error) {
	if principal == nil || principal.Collaborator == nil {
		return nil, nil
	}
	ticket, err := s.tickets.GetByCollaboratorAndID(ctx, principal.Collaborator.ID, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// FindAllOpenByOwner lists the caller's non-finalized tickets.
func (s *TicketService) FindAllOpenByOwner(ctx context.Context, principal *auth.Principal) ([]domain.Ticket, error) {
	if principal == nil || principal.Collaborator == nil {
		return nil, nil
	}
	tickets, err := s.tickets.ListOpenByCollaborator(ctx, principal.Collaborator.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// FindByOwnerAndSubjectSubstring lists the caller's tickets whose subject
// contains the given text.
func (s *TicketService) FindByOwnerAndSubjectSubstring(ctx context.Context, principal *auth.Principal, subject string) ([]domain.Ticket, error) {
	if principal == nil || principal.Collaborator == nil {
		return nil, nil
	}
	tickets, err := s.tickets.SearchBySubject(ctx, principal.Collaborator.ID, subject)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListByAnalyst returns one page of the analyst inbox plus the page-independent
// total. A caller that resolves to no analyst sees an empty inbox.
func (s *TicketService) ListByAnalyst(ctx context.Context, principal *auth.Principal, filter repository.AnalystPageFilter) ([]domain.Ticket, int, error) {
	analystID, err := s.identity.DefaultAnalystOrSelf(ctx, principal)
	if err != nil {
		return nil, 0, err
	}
	if analystID == nil {
		return []domain.Ticket{}, 0, nil
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	tickets, total, err := s.tickets.ListByAnalyst(ctx, *analystID, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// GetByID fetches a ticket without owner scoping, for analyst detail views.
func (s *TicketService) GetByID(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// GetConversation returns the transcript for a ticket, or nil when absent.
func (s *TicketService) GetConversation(ctx context.Context, ticketID int64) (*domain.Conversation, error) {
	conversation, err := s.conversations.GetByTicket(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return conversation, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func collaboratorActor(id string) events.Actor {
	return events.Actor{CollaboratorID: &id}
}

func analystActor(id string) events.Actor {
	return events.Actor{AnalystID: &id}
}
