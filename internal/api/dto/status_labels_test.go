package dto

import (
	"testing"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestParseStatusLabel(t *testing.T) {
	cases := []struct {
		in   string
		want domain.TicketStatus
	}{
		{"Open", domain.TicketStatusAccepted},
		{"accepted", domain.TicketStatusAccepted},
		{"Abierto", domain.TicketStatusAccepted},
		{"In Progress", domain.TicketStatusInProgress},
		{"in_progress", domain.TicketStatusInProgress},
		{"en atención", domain.TicketStatusInProgress},
		{"en atencion", domain.TicketStatusInProgress},
		{"EN ATENCIÓN", domain.TicketStatusInProgress},
		{"Closed", domain.TicketStatusFinalized},
		{"cerrado", domain.TicketStatusFinalized},
		{"finalizado", domain.TicketStatusFinalized},
		{"Rejected", domain.TicketStatusCancelled},
		{"rechazado", domain.TicketStatusCancelled},
		{"  cancelled  ", domain.TicketStatusCancelled},
	}
	for _, tc := range cases {
		got, ok := ParseStatusLabel(tc.in)
		if !ok {
			t.Fatalf("ParseStatusLabel(%q) not recognized", tc.in)
		}
		if got != tc.want {
			t.Fatalf("ParseStatusLabel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseStatusLabelUnknown(t *testing.T) {
	for _, in := range []string{"", "pending", "closedd"} {
		if _, ok := ParseStatusLabel(in); ok {
			t.Fatalf("ParseStatusLabel(%q) should not resolve", in)
		}
	}
}

func TestParseLevelLabel(t *testing.T) {
	cases := []struct {
		in   string
		want domain.TicketLevel
	}{
		{"low", domain.TicketLevelLow},
		{"Bajo", domain.TicketLevelLow},
		{"medio", domain.TicketLevelMedium},
		{"HIGH", domain.TicketLevelHigh},
		{"alto", domain.TicketLevelHigh},
		{"crítico", domain.TicketLevelCritical},
		{"critico", domain.TicketLevelCritical},
		{"critical", domain.TicketLevelCritical},
	}
	for _, tc := range cases {
		got, ok := ParseLevelLabel(tc.in)
		if !ok {
			t.Fatalf("ParseLevelLabel(%q) not recognized", tc.in)
		}
		if got != tc.want {
			t.Fatalf("ParseLevelLabel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseTypeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want domain.TicketType
	}{
		{"incident", domain.TicketTypeIncident},
		{"Incidencia", domain.TicketTypeIncident},
		{"request", domain.TicketTypeRequest},
		{"SOLICITUD", domain.TicketTypeRequest},
	}
	for _, tc := range cases {
		got, ok := ParseTypeLabel(tc.in)
		if !ok {
			t.Fatalf("ParseTypeLabel(%q) not recognized", tc.in)
		}
		if got != tc.want {
			t.Fatalf("ParseTypeLabel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
	if _, ok := ParseTypeLabel("complaint"); ok {
		t.Fatalf("unknown type should not resolve")
	}
}

func TestStatusLabelRoundTrip(t *testing.T) {
	for status, label := range map[domain.TicketStatus]string{
		domain.TicketStatusAccepted:   "Open",
		domain.TicketStatusInProgress: "In Progress",
		domain.TicketStatusFinalized:  "Closed",
		domain.TicketStatusCancelled:  "Rejected",
	} {
		if got := StatusLabel(status); got != label {
			t.Fatalf("StatusLabel(%s) = %q, want %q", status, got, label)
		}
		parsed, ok := ParseStatusLabel(label)
		if !ok || parsed != status {
			t.Fatalf("label %q does not parse back to %s", label, status)
		}
	}
}
