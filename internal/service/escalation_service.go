package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
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

// minJustificationLen is the minimum rune count for an escalation reason.
const minJustificationLen = 10

const reasonCacheTTL = 5 * time.Minute

// ReasonCache is the slice of the Redis wrapper the resolver needs. Nil means
// no caching.
type ReasonCache interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, val string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EscalationService hands tickets up the analyst hierarchy. The target is
// picked uniformly at random among analysts strictly above the requester's
// level; reassignment and the audit record commit atomically in the store.
type EscalationService struct {
	tickets     repository.TicketRepository
	analysts    repository.AnalystRepository
	escalations repository.EscalationRepository
	cache       ReasonCache
	dispatcher  events.Dispatcher
	pick        func(n int) int
}

// EscalationDependencies bundles repositories for the escalation service.
type EscalationDependencies struct {
	TicketRepo     repository.TicketRepository
	AnalystRepo    repository.AnalystRepository
	EscalationRepo repository.EscalationRepository
	Cache          ReasonCache
	Dispatcher     events.Dispatcher
}

// NewEscalationService constructs the service.
func NewEscalationService(deps EscalationDependencies) *EscalationService {
	return &EscalationService{
		tickets:     deps.TicketRepo,
		analysts:    deps.AnalystRepo,
		escalations: deps.EscalationRepo,
		cache:       deps.Cache,
		dispatcher:  deps.Dispatcher,
		pick:        rand.Intn,
	}
}

// Escalate reassigns the caller's ticket to a random higher-level analyst and
// logs the justification. Terminal-level analysts cannot escalate; only the
// currently assigned analyst may hand off their own ticket.
func (s *EscalationService) Escalate(ctx context.Context, principal *auth.Principal, ticketID int64, justification string) (*domain.Analyst, error) {
	if principal == nil || principal.Analyst == nil {
		return nil, apperrors.NewForbidden("analyst role required")
	}
	if utf8.RuneCountInString(justification) < minJustificationLen {
		return nil, apperrors.NewValidationError("justification too short",
			map[string]any{"min_length": minJustificationLen})
	}
	requester := principal.Analyst
	if requester.Level >= domain.AnalystLevelTerminal {
		return nil, apperrors.NewForbidden("terminal-level analysts cannot escalate")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.AnalystID == nil || *ticket.AnalystID != requester.ID {
		return nil, apperrors.NewForbidden("ticket not assigned to caller")
	}

	candidates, err := s.analysts.ListAboveLevel(ctx, requester.Level)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewConflict("no higher-level analysts available",
			map[string]any{"level": requester.Level})
	}
	target := candidates[s.pick(len(candidates))]

	if _, err := s.escalations.Escalate(ctx, ticketID, requester.ID, target.ID, justification); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, reasonCacheKey(ticketID))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketEscalated,
		TicketID: ticketID,
		Actor:    analystActor(requester.ID),
		Payload: events.TicketEscalatedPayload{
			FromAnalystID: requester.ID,
			ToAnalystID:   target.ID,
			ToLevel:       target.Level,
			Justification: justification,
		},
	})
	return &target, nil
}

// LatestEscalationReason returns the newest justification for a ticket, by
// escalation id descending. Nil when the ticket was never escalated.
func (s *EscalationService) LatestEscalationReason(ctx context.Context, ticketID int64) (*string, error) {
	key := reasonCacheKey(ticketID)
	if s.cache != nil {
		if cached, ok, err := s.cache.GetString(ctx, key); err == nil && ok {
			return &cached, nil
		}
	}

	reason, err := s.escalations.LatestReason(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if reason != nil && s.cache != nil {
		_ = s.cache.SetString(ctx, key, *reason, reasonCacheTTL)
	}
	return reason, nil
}

func reasonCacheKey(ticketID int64) string {
	return fmt.Sprintf("escalation:reason:%d", ticketID)
}

func (s *EscalationService) publishEvent(ctx context.Context, event events.Event) {
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
