package domain

import "time"

// IncidentStatus represents the lifecycle state of an incident.
type IncidentStatus string

const (
	StatusReported   IncidentStatus = "reported"
	StatusInProgress IncidentStatus = "in_progress"
	StatusResolved   IncidentStatus = "resolved"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[IncidentStatus][]IncidentStatus{
	StatusReported:   {StatusInProgress, StatusResolved},
	StatusInProgress: {StatusResolved},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
// Staying in the same status is always allowed.
func (s IncidentStatus) CanTransitionTo(next IncidentStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// GeoPoint is a WGS84 position. Serialized as GeoJSON [lng, lat].
type GeoPoint struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Incident is the core aggregate root.
type Incident struct {
	ID          int64          `json:"id"`
	CategoryID  int64          `json:"category_id"`
	ReporterID  int64          `json:"reporter_id"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	Location    GeoPoint       `json:"location"`
	ReportedAt  time.Time      `json:"reported_at"`
	AssignedAt  *time.Time     `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ApplyStatus moves the incident to next, stamping assigned_at/resolved_at the
// first time the corresponding status is entered.
func (i *Incident) ApplyStatus(next IncidentStatus, at time.Time) error {
	if !i.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	if next == i.Status {
		return nil
	}
	switch next {
	case StatusInProgress:
		if i.AssignedAt == nil {
			t := at
			i.AssignedAt = &t
		}
	case StatusResolved:
		if i.ResolvedAt == nil {
			t := at
			i.ResolvedAt = &t
		}
	}
	i.Status = next
	return nil
}
