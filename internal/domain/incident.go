package domain

import (
	"strings"
	"time"
)

// IncidentType is the closed set of incident categories stored by the dashboard.
type IncidentType string

const (
	TypeTerrorism     IncidentType = "Terrorism"
	TypeBanditry      IncidentType = "Banditry"
	TypeCivilUnrest   IncidentType = "Civil Unrest"
	TypeUnknownGunmen IncidentType = "Unknown Gunmen"
	TypePoliceClash   IncidentType = "Police Clash"
	TypeCultClash     IncidentType = "Cult Clash"
)

// IncidentTypes lists every known type in display order.
var IncidentTypes = []IncidentType{
	TypeTerrorism,
	TypeBanditry,
	TypeCivilUnrest,
	TypeUnknownGunmen,
	TypePoliceClash,
	TypeCultClash,
}

// ParseIncidentType matches a type name case-insensitively.
func ParseIncidentType(value string) (IncidentType, bool) {
	for _, t := range IncidentTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(value)) {
			return t, true
		}
	}
	return "", false
}

// Severity is ordered: Low < Medium < High < Critical.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Rank returns the ordinal of the severity, -1 when unknown.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// ParseSeverity matches a severity name case-insensitively.
func ParseSeverity(value string) (Severity, bool) {
	for s := range severityRank {
		if strings.EqualFold(string(s), strings.TrimSpace(value)) {
			return s, true
		}
	}
	return "", false
}

// SeverityFor maps casualty counts onto the severity scale.
func SeverityFor(fatalities, total int) Severity {
	switch {
	case fatalities >= 10 || total >= 30:
		return SeverityCritical
	case fatalities >= 5 || total >= 15:
		return SeverityHigh
	case fatalities >= 1 || total >= 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// UnknownState marks incidents whose state could not be resolved.
const UnknownState = "Unknown"

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// CandidateIncident is a structured extraction that has not been accepted yet.
type CandidateIncident struct {
	Title        string
	Summary      string
	OccurredAt   time.Time
	State        string
	LocalArea    string
	Coordinates  Coordinates
	Fatalities   int
	Injuries     int
	Abducted     int
	IncidentType IncidentType
	Severity     Severity
	SourceURL    string
	Sources      []string
	Verified     bool
}

// Casualties sums fatalities, injuries and abductions.
func (c CandidateIncident) Casualties() int {
	return c.Fatalities + c.Injuries + c.Abducted
}

// ToSummary converts an accepted candidate into the comparison shape used by dedup.
func (c CandidateIncident) ToSummary(id string) IncidentSummary {
	return IncidentSummary{
		ID:           id,
		Title:        c.Title,
		OccurredAt:   c.OccurredAt,
		State:        c.State,
		Fatalities:   c.Fatalities,
		Injuries:     c.Injuries,
		Abducted:     c.Abducted,
		LocalArea:    c.LocalArea,
		IncidentType: c.IncidentType,
	}
}

// IncidentSummary is the subset of a persisted incident needed for duplicate checks.
// LocalArea and IncidentType are optional.
type IncidentSummary struct {
	ID           string
	Title        string
	OccurredAt   time.Time
	State        string
	Fatalities   int
	Injuries     int
	Abducted     int
	LocalArea    string
	IncidentType IncidentType
}

// Casualties sums fatalities, injuries and abductions.
func (s IncidentSummary) Casualties() int {
	return s.Fatalities + s.Injuries + s.Abducted
}
