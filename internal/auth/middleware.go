package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller: the person plus at most one
// role record. Token verification happened upstream; this is the resolved
// passport every core operation receives.
type Principal struct {
	PersonID     string
	Role         Role
	Collaborator *domain.Collaborator
	Analyst      *domain.Analyst
}

// AnalystLevel returns the caller's hierarchy level, or 0 when not an analyst.
func (p *Principal) AnalystLevel() int {
	if p == nil || p.Analyst == nil {
		return 0
	}
	return p.Analyst.Level
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens        *TokenManager
	collaborators repository.CollaboratorRepository
	analysts      repository.AnalystRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, collaborators repository.CollaboratorRepository, analysts repository.AnalystRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, collaborators: collaborators, analysts: analysts}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{PersonID: claims.PersonID, Role: claims.Role}

	switch claims.Role {
	case RoleCollaborator:
		collaborator, err := m.collaborators.GetByPersonID(c.Context(), claims.PersonID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("collaborator role not found")
			}
			return apperrors.MapError(err)
		}
		principal.Collaborator = collaborator
	case RoleAnalyst:
		analyst, err := m.analysts.GetByPersonID(c.Context(), claims.PersonID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("analyst role not found")
			}
			return apperrors.MapError(err)
		}
		principal.Analyst = analyst
	default:
		return apperrors.NewUnauthorized("unknown role")
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
