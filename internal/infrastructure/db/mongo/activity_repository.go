package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

const activityCollection = "incident_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{db: db}
}

func activityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "incident_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
	}
}

// Insert persists an activity record to the incident_activity audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.IncidentActivity) error {
	doc := bson.M{
		"incident_id":  a.IncidentID,
		"kind":         string(a.Kind),
		"actor_id":     a.ActorID,
		"occurred_at":  a.OccurredAt.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if a.Status != "" {
		doc["status"] = string(a.Status)
	}

	_, err := r.db.Collection(activityCollection).InsertOne(ctx, doc)
	return err
}
