package domain

import "time"

// ActivityKind names what happened to an incident.
type ActivityKind string

const (
	ActivityCreated       ActivityKind = "created"
	ActivityUpdated       ActivityKind = "updated"
	ActivityStatusChanged ActivityKind = "status_changed"
	ActivityDeleted       ActivityKind = "deleted"
)

// IncidentActivity is an audit record of a mutation applied to an incident.
type IncidentActivity struct {
	IncidentID int64
	Kind       ActivityKind
	ActorID    int64
	Status     IncidentStatus // status after the mutation; empty for deletes
	OccurredAt time.Time
}
