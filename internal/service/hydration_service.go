package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketView is a display-ready ticket: the raw row joined against
// collaborator and service reference data. Pointer fields stay nil when the
// referenced row is gone; a broken join never fails the page.
type TicketView struct {
	ID        int64
	Subject   string
	Type      domain.TicketType
	Level     domain.TicketLevel
	Status    domain.TicketStatus
	CreatedAt string
	User      *string
	Email     *string
	Company   *string
	Service   *string
}

const viewDateLayout = "02/01/2006"

// HydrationService joins ticket pages against reference data in two batched
// lookups, never one per row.
type HydrationService struct {
	refs repository.ReferenceRepository
}

// NewHydrationService constructs the service.
func NewHydrationService(refs repository.ReferenceRepository) *HydrationService {
	return &HydrationService{refs: refs}
}

// HydratePage builds display records for a page of tickets. Exactly two
// reference lookups are issued regardless of page size: one over the distinct
// collaborator ids, one over the distinct client-service ids. Output order
// matches input order.
func (s *HydrationService) HydratePage(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	collaboratorIDs := distinct(tickets, func(t domain.Ticket) string { return t.CollaboratorID })
	serviceIDs := distinct(tickets, func(t domain.Ticket) string { return t.ClientServiceID })

	collaborators, err := s.refs.CollaboratorRefs(ctx, collaboratorIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	services, err := s.refs.ServiceNames(ctx, serviceIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]TicketView, 0, len(tickets))
	for _, ticket := range tickets {
		view := TicketView{
			ID:        ticket.ID,
			Subject:   ticket.Subject,
			Type:      ticket.Type,
			Level:     ticket.Level,
			Status:    ticket.Status,
			CreatedAt: ticket.CreatedAt.Format(viewDateLayout),
		}
		if ref, ok := collaborators[ticket.CollaboratorID]; ok {
			name, email, company := ref.Name, ref.Email, ref.ClientName
			view.User = &name
			view.Email = &email
			view.Company = &company
		}
		if name, ok := services[ticket.ClientServiceID]; ok {
			serviceName := name
			view.Service = &serviceName
		}
		views = append(views, view)
	}
	return views, nil
}

// HydrateOne is the single-ticket convenience for detail views.
func (s *HydrationService) HydrateOne(ctx context.Context, ticket domain.Ticket) (*TicketView, error) {
	views, err := s.HydratePage(ctx, []domain.Ticket{ticket})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func distinct(tickets []domain.Ticket, key func(domain.Ticket) string) []string {
	seen := make(map[string]struct{}, len(tickets))
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		k := key(t)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		ids = append(ids, k)
	}
	return ids
}
