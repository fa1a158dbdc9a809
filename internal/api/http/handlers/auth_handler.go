package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AuthHandler exchanges upstream-verified identities for service tokens.
// Each login path provisions exactly one role, lazily.
type AuthHandler struct {
	identity *service.IdentityService
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identity *service.IdentityService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens}
}

// CollaboratorLogin POST /auth/collaborator/login.
func (h *AuthHandler) CollaboratorLogin(c *fiber.Ctx) error {
	identity, err := parseExternalIdentity(c)
	if err != nil {
		return err
	}

	person, err := h.identity.ResolveOrCreatePerson(c.Context(), identity)
	if err != nil {
		return err
	}
	if _, err := h.identity.EnsureCollaboratorRole(c.Context(), person); err != nil {
		return err
	}

	return h.issueToken(c, person.ID, auth.RoleCollaborator)
}

// AnalystLogin POST /auth/analyst/login.
func (h *AuthHandler) AnalystLogin(c *fiber.Ctx) error {
	identity, err := parseExternalIdentity(c)
	if err != nil {
		return err
	}

	person, err := h.identity.ResolveOrCreatePerson(c.Context(), identity)
	if err != nil {
		return err
	}
	if _, err := h.identity.EnsureAnalystRole(c.Context(), person); err != nil {
		return err
	}

	return h.issueToken(c, person.ID, auth.RoleAnalyst)
}

func parseExternalIdentity(c *fiber.Ctx) (domain.ExternalIdentity, error) {
	var req dto.ExternalLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ExternalIdentity{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Provider == "" || req.ProviderID == "" {
		return domain.ExternalIdentity{}, apperrors.NewValidationError("provider and provider_id required", nil)
	}
	return domain.ExternalIdentity{
		Provider:     req.Provider,
		ProviderID:   req.ProviderID,
		Email:        req.Email,
		Name:         req.Name,
		HostedDomain: req.HostedDomain,
	}, nil
}

func (h *AuthHandler) issueToken(c *fiber.Ctx, personID string, role auth.Role) error {
	token, expiresAt, err := h.tokens.GenerateToken(personID, role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}
