package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

const incidentsCollection = "incidents"

// IncidentRepository implements ports.IncidentRepository using MongoDB.
type IncidentRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) ports.IncidentRepository {
	return &IncidentRepository{db: db, col: db.Collection(incidentsCollection)}
}

// geoJSONPoint is stored as-is so the 2dsphere index can serve $near queries.
type geoJSONPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

type incidentDoc struct {
	ID          int64        `bson:"_id"`
	CategoryID  int64        `bson:"category_id"`
	ReporterID  int64        `bson:"reporter_id"`
	Description string       `bson:"description"`
	Status      string       `bson:"status"`
	Location    geoJSONPoint `bson:"location"`
	ReportedAt  time.Time    `bson:"reported_at"`
	AssignedAt  *time.Time   `bson:"assigned_at,omitempty"`
	ResolvedAt  *time.Time   `bson:"resolved_at,omitempty"`
	UpdatedAt   time.Time    `bson:"updated_at"`
}

func incidentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "reporter_id", Value: 1}}},
		{Keys: bson.D{{Key: "category_id", Value: 1}}},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
	}
}

func (r *IncidentRepository) Create(ctx context.Context, i *domain.Incident) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextSequence(ctx, r.db, incidentsCollection)
	if err != nil {
		return nil, err
	}

	doc := toIncidentDoc(i)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert incident: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *IncidentRepository) Update(ctx context.Context, i *domain.Incident) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": i.ID}, toIncidentDoc(i))
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIncidentNotFound
	}
	return nil
}

func (r *IncidentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrIncidentNotFound
	}
	return nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id int64) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc incidentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns incidents matching f ordered by ascending id. Zero-valued
// filter fields are ignored.
func (r *IncidentRepository) List(ctx context.Context, f ports.ListIncidentsFilter) ([]*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, listFilter(f), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find incidents: %w", err)
	}
	var docs []incidentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	out := make([]*domain.Incident, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *IncidentRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return n, nil
}

func listFilter(f ports.ListIncidentsFilter) bson.M {
	filter := bson.M{}
	if f.ReporterID != 0 {
		filter["reporter_id"] = f.ReporterID
	}
	if f.CategoryID != 0 {
		filter["category_id"] = f.CategoryID
	}
	return filter
}

func toIncidentDoc(i *domain.Incident) incidentDoc {
	return incidentDoc{
		ID:          i.ID,
		CategoryID:  i.CategoryID,
		ReporterID:  i.ReporterID,
		Description: i.Description,
		Status:      string(i.Status),
		Location: geoJSONPoint{
			Type:        "Point",
			Coordinates: [2]float64{i.Location.Lng, i.Location.Lat},
		},
		ReportedAt: i.ReportedAt.UTC(),
		AssignedAt: i.AssignedAt,
		ResolvedAt: i.ResolvedAt,
		UpdatedAt:  i.UpdatedAt.UTC(),
	}
}

func (d *incidentDoc) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:          d.ID,
		CategoryID:  d.CategoryID,
		ReporterID:  d.ReporterID,
		Description: d.Description,
		Status:      domain.IncidentStatus(d.Status),
		Location:    domain.GeoPoint{Lng: d.Location.Coordinates[0], Lat: d.Location.Coordinates[1]},
		ReportedAt:  d.ReportedAt,
		AssignedAt:  d.AssignedAt,
		ResolvedAt:  d.ResolvedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
