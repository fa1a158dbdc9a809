package dto

import "time"

// ExternalLoginRequest carries an identity already verified by the upstream
// provider. The gateway in front of this service owns token verification.
type ExternalLoginRequest struct {
	Provider     string `json:"provider"`
	ProviderID   string `json:"provider_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	HostedDomain string `json:"hosted_domain,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
