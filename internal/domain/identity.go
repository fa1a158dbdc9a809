package domain

import "time"

// ExternalIdentity is the already-verified identity handed over by the auth
// boundary. Token verification itself happens upstream.
type ExternalIdentity struct {
	Provider     string
	ProviderID   string
	Email        string
	Name         string
	HostedDomain string
}

// Person is the immutable identity anchor created once per external login.
// Role records hang off it; a person never carries role data itself.
type Person struct {
	ID           string
	Provider     string
	ProviderID   string
	Name         string
	Email        string
	HostedDomain *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Client is a tenant organization with contracted services.
type Client struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// ContractedService is a service under a client's contract, keyed by the
// client_service join row that tickets reference.
type ContractedService struct {
	ClientServiceID string
	ServiceID       string
	Name            string
}

// Collaborator is the Person-by-Client membership acting as the ticket owner.
type Collaborator struct {
	ID        string
	PersonID  string
	ClientID  string
	CreatedAt time.Time
}

// AnalystLevelTerminal is the highest hierarchy level; analysts at this level
// cannot escalate further.
const AnalystLevelTerminal = 3

// Analyst is a support staff member with a hierarchy level between 1 and 3.
type Analyst struct {
	ID        string
	PersonID  string
	Level     int
	CreatedAt time.Time
}
