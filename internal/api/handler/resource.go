package handler

import (
	"time"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

// Responses follow a JSON:API-like layout: {"data": <resource | []resource>}.

type document struct {
	Data any `json:"data"`
}

type resource struct {
	ID            int64          `json:"id"`
	Type          string         `json:"type"`
	Attributes    any            `json:"attributes"`
	Relationships map[string]any `json:"relationships,omitempty"`
}

type userAttributes struct {
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type roleResource struct {
	Type       string         `json:"type"`
	Attributes roleAttributes `json:"attributes"`
}

type roleAttributes struct {
	Name string `json:"name"`
}

type tokenResource struct {
	Type       string          `json:"type"`
	Attributes tokenAttributes `json:"attributes"`
}

type tokenAttributes struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type categoryAttributes struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// geoJSON is a GeoJSON Point: coordinates are [lng, lat].
type geoJSON struct {
	Type        string    `json:"type"        validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

type incidentAttributes struct {
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Location    geoJSON    `json:"location"`
	ReportedAt  time.Time  `json:"reported_at"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toUserResource(u *domain.User, withRoles bool) resource {
	r := resource{
		ID:   u.ID,
		Type: "users",
		Attributes: userAttributes{
			Name:      u.Name,
			LastName:  u.LastName,
			Email:     u.Email,
			CreatedAt: u.CreatedAt.UTC(),
			UpdatedAt: u.UpdatedAt.UTC(),
		},
	}
	if withRoles {
		roles := make([]roleResource, len(u.Roles))
		for i, name := range u.Roles {
			roles[i] = roleResource{Type: "roles", Attributes: roleAttributes{Name: name}}
		}
		r.Relationships = map[string]any{"roles": roles}
	}
	return r
}

func toCategoryResource(c *domain.Category) resource {
	return resource{
		ID:   c.ID,
		Type: "incident_categories",
		Attributes: categoryAttributes{
			Name:        c.Name,
			Description: c.Description,
			CreatedAt:   c.CreatedAt.UTC(),
			UpdatedAt:   c.UpdatedAt.UTC(),
		},
	}
}

func toCategoryCollection(items []*domain.Category) document {
	out := make([]resource, len(items))
	for i, c := range items {
		out[i] = toCategoryResource(c)
	}
	return document{Data: out}
}

func toIncidentResource(d ports.IncidentDetail) resource {
	inc := d.Incident
	r := resource{
		ID:   inc.ID,
		Type: "incidents",
		Attributes: incidentAttributes{
			Description: inc.Description,
			Status:      string(inc.Status),
			Location:    toGeoJSON(inc.Location),
			ReportedAt:  inc.ReportedAt.UTC(),
			AssignedAt:  utcPtr(inc.AssignedAt),
			ResolvedAt:  utcPtr(inc.ResolvedAt),
			CreatedAt:   inc.ReportedAt.UTC(),
			UpdatedAt:   inc.UpdatedAt.UTC(),
		},
		Relationships: map[string]any{},
	}
	if d.Category != nil {
		r.Relationships["category"] = toCategoryResource(d.Category)
	}
	if d.Reporter != nil {
		r.Relationships["reporter"] = toUserResource(d.Reporter, false)
	}
	return r
}

func toIncidentCollection(items []ports.IncidentDetail) document {
	out := make([]resource, len(items))
	for i, d := range items {
		out[i] = toIncidentResource(d)
	}
	return document{Data: out}
}

func toGeoJSON(p domain.GeoPoint) geoJSON {
	return geoJSON{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
