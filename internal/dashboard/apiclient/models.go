package apiclient

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Incident statuses understood by the API.
const (
	StatusReported   = "reported"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Identity is the resolved profile behind a credential.
type Identity struct {
	ID       int64
	Name     string
	LastName string
	Email    string
	Roles    []string
}

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GeoPoint is a WGS84 position.
type GeoPoint struct {
	Lng float64
	Lat float64
}

// String renders the point as "lat, lng" with six decimals.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}

// Incident carries snapshots of its category and reporter as returned by the
// API. Either may be nil when the server omits the relationship.
type Incident struct {
	ID          int64
	Description string
	Status      string
	Location    GeoPoint
	Category    *Category
	Reporter    *Identity
	ReportedAt  time.Time
	AssignedAt  *time.Time
	ResolvedAt  *time.Time
	UpdatedAt   time.Time
}

// Location is a GeoJSON Point; coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type"        validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2,dive,gte=-180,lte=180"`
}

// PointAt builds a GeoJSON point.
func PointAt(lng, lat float64) Location {
	return Location{Type: "Point", Coordinates: []float64{lng, lat}}
}

// IncidentPayload is the body of incident create and update calls. Status is
// only honoured by the server for privileged users.
type IncidentPayload struct {
	CategoryID  int64    `json:"category_id"      validate:"required,gt=0"`
	Description string   `json:"description"      validate:"required,max=2000"`
	Location    Location `json:"location"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=reported in_progress resolved"`
}

// flexID accepts ids encoded as JSON numbers or numeric strings.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(n)
	return nil
}

type document[T any] struct {
	Data T `json:"data"`
}

type wireToken struct {
	Attributes struct {
		AccessToken string `json:"access_token"`
	} `json:"attributes"`
}

type wireUser struct {
	ID         flexID `json:"id"`
	Attributes struct {
		Name     string `json:"name"`
		LastName string `json:"last_name"`
		Email    string `json:"email"`
	} `json:"attributes"`
	Relationships struct {
		Roles []struct {
			Attributes struct {
				Name string `json:"name"`
			} `json:"attributes"`
		} `json:"roles"`
	} `json:"relationships"`
}

func (w wireUser) identity() Identity {
	id := Identity{
		ID:       int64(w.ID),
		Name:     w.Attributes.Name,
		LastName: w.Attributes.LastName,
		Email:    w.Attributes.Email,
		Roles:    make([]string, 0, len(w.Relationships.Roles)),
	}
	for _, r := range w.Relationships.Roles {
		id.Roles = append(id.Roles, r.Attributes.Name)
	}
	return id
}

type wireCategory struct {
	ID         flexID `json:"id"`
	Attributes struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	} `json:"attributes"`
}

func (w wireCategory) category() Category {
	return Category{
		ID:          int64(w.ID),
		Name:        w.Attributes.Name,
		Description: w.Attributes.Description,
		CreatedAt:   w.Attributes.CreatedAt,
		UpdatedAt:   w.Attributes.UpdatedAt,
	}
}

type wireIncident struct {
	ID         flexID `json:"id"`
	Attributes struct {
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Location    Location   `json:"location"`
		ReportedAt  time.Time  `json:"reported_at"`
		AssignedAt  *time.Time `json:"assigned_at"`
		ResolvedAt  *time.Time `json:"resolved_at"`
		UpdatedAt   time.Time  `json:"updated_at"`
	} `json:"attributes"`
	Relationships struct {
		Category *wireCategory `json:"category"`
		Reporter *wireUser     `json:"reporter"`
	} `json:"relationships"`
}

func (w wireIncident) incident() Incident {
	a := w.Attributes
	inc := Incident{
		ID:          int64(w.ID),
		Description: a.Description,
		Status:      a.Status,
		ReportedAt:  a.ReportedAt,
		AssignedAt:  a.AssignedAt,
		ResolvedAt:  a.ResolvedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if len(a.Location.Coordinates) == 2 {
		inc.Location = GeoPoint{Lng: a.Location.Coordinates[0], Lat: a.Location.Coordinates[1]}
	}
	if c := w.Relationships.Category; c != nil {
		cat := c.category()
		inc.Category = &cat
	}
	if r := w.Relationships.Reporter; r != nil {
		rep := r.identity()
		inc.Reporter = &rep
	}
	return inc
}
