package dto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/spec-kit/support-desk/internal/domain"
)

// The UI speaks in labels, the store speaks in raw tokens. Parsing is
// accent and case insensitive because legacy clients still send Spanish
// labels, with or without diacritics ("en atención", "en atencion").

var statusAliases = map[string]domain.TicketStatus{
	"accepted":    domain.TicketStatusAccepted,
	"open":        domain.TicketStatusAccepted,
	"abierto":     domain.TicketStatusAccepted,
	"in_progress": domain.TicketStatusInProgress,
	"in progress": domain.TicketStatusInProgress,
	"en atencion": domain.TicketStatusInProgress,
	"finalized":   domain.TicketStatusFinalized,
	"closed":      domain.TicketStatusFinalized,
	"cerrado":     domain.TicketStatusFinalized,
	"finalizado":  domain.TicketStatusFinalized,
	"cancelled":   domain.TicketStatusCancelled,
	"rejected":    domain.TicketStatusCancelled,
	"rechazado":   domain.TicketStatusCancelled,
	"cancelado":   domain.TicketStatusCancelled,
}

var levelAliases = map[string]domain.TicketLevel{
	"low":      domain.TicketLevelLow,
	"bajo":     domain.TicketLevelLow,
	"medium":   domain.TicketLevelMedium,
	"medio":    domain.TicketLevelMedium,
	"high":     domain.TicketLevelHigh,
	"alto":     domain.TicketLevelHigh,
	"critical": domain.TicketLevelCritical,
	"critico":  domain.TicketLevelCritical,
}

var typeAliases = map[string]domain.TicketType{
	"incident":   domain.TicketTypeIncident,
	"incidencia": domain.TicketTypeIncident,
	"request":    domain.TicketTypeRequest,
	"solicitud":  domain.TicketTypeRequest,
}

var statusLabels = map[domain.TicketStatus]string{
	domain.TicketStatusAccepted:   "Open",
	domain.TicketStatusInProgress: "In Progress",
	domain.TicketStatusFinalized:  "Closed",
	domain.TicketStatusCancelled:  "Rejected",
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldLabel lowercases and strips diacritics so "En Atención" and
// "en atencion" hit the same alias.
func foldLabel(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ParseStatusLabel resolves a UI label or raw token to a raw status.
func ParseStatusLabel(label string) (domain.TicketStatus, bool) {
	status, ok := statusAliases[foldLabel(label)]
	return status, ok
}

// ParseLevelLabel resolves a UI label or raw token to a raw level.
func ParseLevelLabel(label string) (domain.TicketLevel, bool) {
	level, ok := levelAliases[foldLabel(label)]
	return level, ok
}

// ParseTypeLabel resolves a UI label or raw token to a raw ticket type.
func ParseTypeLabel(label string) (domain.TicketType, bool) {
	ticketType, ok := typeAliases[foldLabel(label)]
	return ticketType, ok
}

// StatusLabel renders a raw status as its presented label. Unknown values
// pass through unchanged.
func StatusLabel(status domain.TicketStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}
