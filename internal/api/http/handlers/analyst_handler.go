package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AnalystHandler serves the analyst inbox and lifecycle mutations.
type AnalystHandler struct {
	tickets     *service.TicketService
	escalations *service.EscalationService
	hydration   *service.HydrationService
}

// NewAnalystHandler constructs handler.
func NewAnalystHandler(tickets *service.TicketService, escalations *service.EscalationService, hydration *service.HydrationService) *AnalystHandler {
	return &AnalystHandler{tickets: tickets, escalations: escalations, hydration: hydration}
}

// ListTickets GET /analyst/tickets.
func (h *AnalystHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, err := parseAnalystPageQuery(c)
	if err != nil {
		return err
	}

	tickets, total, err := h.tickets.ListByAnalyst(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	views, err := h.hydration.HydratePage(c.Context(), tickets)
	if err != nil {
		return err
	}

	items := make([]dto.AnalystTicketRow, 0, len(views))
	for i := range views {
		items = append(items, analystRow(&views[i]))
	}
	return c.JSON(fiber.Map{"data": dto.AnalystTicketPage{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}})
}

// GetTicket GET /analyst/tickets/:id.
func (h *AnalystHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetByID(c.Context(), ticketID)
	if err != nil {
		return err
	}
	view, err := h.hydration.HydrateOne(c.Context(), *ticket)
	if err != nil {
		return err
	}
	conversation, err := h.tickets.GetConversation(c.Context(), ticketID)
	if err != nil {
		return err
	}
	reason, err := h.escalations.LatestEscalationReason(c.Context(), ticketID)
	if err != nil {
		return err
	}

	detail := dto.AnalystTicketDetail{
		AnalystTicketRow: analystRow(view),
		SLAHours:         domain.ResponseSLA(ticket.Level).Hours(),
		Diagnosis:        ticket.Diagnosis,
		ClosedAt:         ticket.ClosedAt,
		UpdatedAt:        ticket.UpdatedAt,
		Messages:         []dto.MessageEntry{},
		EscalationReason: reason,
	}
	if conversation != nil {
		detail.Messages = messageEntries(conversation.Messages)
	}
	return c.JSON(fiber.Map{"data": detail})
}

// UpdateStatus PATCH /analyst/tickets/:id/status.
func (h *AnalystHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := dto.ParseStatusLabel(req.Status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	input := service.StatusUpdateInput{Status: status, Description: req.Description}
	if req.Level != nil {
		level, ok := dto.ParseLevelLabel(*req.Level)
		if !ok {
			return apperrors.NewValidationError("unknown ticket level", map[string]any{"level": *req.Level})
		}
		input.Level = &level
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), principal, ticketID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateLevel PATCH /analyst/tickets/:id/level.
func (h *AnalystHandler) UpdateLevel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	level, ok := dto.ParseLevelLabel(req.Level)
	if !ok {
		return apperrors.NewValidationError("unknown ticket level", map[string]any{"level": req.Level})
	}

	ticket, err := h.tickets.UpdateLevel(c.Context(), principal, ticketID, level)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Escalate POST /analyst/tickets/:id/escalate.
func (h *AnalystHandler) Escalate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.EscalateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	target, err := h.escalations.Escalate(c.Context(), principal, ticketID, strings.TrimSpace(req.Justification))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalateResponse{
		TicketID:  ticketID,
		AnalystID: target.ID,
		Level:     target.Level,
	}})
}

func parseAnalystPageQuery(c *fiber.Ctx) (repository.AnalystPageFilter, error) {
	filter := repository.AnalystPageFilter{
		Limit:  parseIntQuery(c.Query("limit"), 20),
		Offset: parseIntQuery(c.Query("offset"), 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status, ok := dto.ParseStatusLabel(part)
			if !ok {
				return filter, apperrors.NewValidationError("unknown status filter", map[string]any{"status": part})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	return filter, nil
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func analystRow(view *service.TicketView) dto.AnalystTicketRow {
	return dto.AnalystTicketRow{
		ID:        view.ID,
		Subject:   view.Subject,
		Type:      view.Type,
		Level:     view.Level,
		Status:    dto.StatusLabel(view.Status),
		CreatedAt: view.CreatedAt,
		User:      view.User,
		Email:     view.Email,
		Company:   view.Company,
		Service:   view.Service,
	}
}
