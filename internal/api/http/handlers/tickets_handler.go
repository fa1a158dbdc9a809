package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TicketsHandler manages collaborator self-service ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketType, ok := dto.ParseTypeLabel(req.Type)
	if !ok {
		return apperrors.NewValidationError("unknown ticket type", map[string]any{"type": req.Type})
	}
	level, ok := dto.ParseLevelLabel(req.Level)
	if !ok {
		return apperrors.NewValidationError("unknown ticket level", map[string]any{"level": req.Level})
	}
	messages, err := parseMessages(req.Messages)
	if err != nil {
		return err
	}

	input := service.TicketCreateInput{
		Subject:     req.Subject,
		Type:        ticketType,
		Level:       level,
		ServiceName: req.ServiceName,
		Messages:    messages,
	}
	ticket, err := h.service.CreateTicket(c.Context(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListOpenTickets GET /tickets.
func (h *TicketsHandler) ListOpenTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.service.FindAllOpenByOwner(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// SearchTickets GET /tickets/search?subject=.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	subject := strings.TrimSpace(c.Query("subject"))
	if subject == "" {
		return apperrors.NewValidationError("subject query required", nil)
	}
	tickets, err := h.service.FindByOwnerAndSubjectSubstring(c.Context(), principal, subject)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummaries(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.FindByOwnerAndID(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// GetConversation GET /tickets/:id/conversation.
func (h *TicketsHandler) GetConversation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.FindByOwnerAndID(c.Context(), principal, ticketID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	conversation, err := h.service.GetConversation(c.Context(), ticketID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return apperrors.NewNotFound("conversation", map[string]any{"ticket_id": ticketID})
	}
	return c.JSON(fiber.Map{"data": conversationResponse(conversation)})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parseMessages(entries []dto.MessageEntry) ([]domain.Message, error) {
	messages := make([]domain.Message, 0, len(entries))
	for _, entry := range entries {
		role := domain.MessageRole(strings.ToLower(strings.TrimSpace(entry.Role)))
		if role != domain.MessageRoleUser && role != domain.MessageRoleAgent {
			return nil, apperrors.NewValidationError("unknown message role", map[string]any{"role": entry.Role})
		}
		messages = append(messages, domain.Message{Role: role, Content: entry.Content})
	}
	return messages, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Subject:   ticket.Subject,
		Type:      ticket.Type,
		Level:     ticket.Level,
		Status:    dto.StatusLabel(ticket.Status),
		SLAHours:  domain.ResponseSLA(ticket.Level).Hours(),
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
		ClosedAt:  ticket.ClosedAt,
		Diagnosis: ticket.Diagnosis,
	}
}

func ticketSummaries(tickets []domain.Ticket) []dto.TicketSummary {
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return items
}

func messageEntries(messages []domain.Message) []dto.MessageEntry {
	entries := make([]dto.MessageEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, dto.MessageEntry{Role: string(msg.Role), Content: msg.Content})
	}
	return entries
}

func conversationResponse(conversation *domain.Conversation) dto.ConversationResponse {
	return dto.ConversationResponse{
		TicketID:  conversation.TicketID,
		Messages:  messageEntries(conversation.Messages),
		CreatedAt: conversation.CreatedAt,
	}
}
