package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskhq/task-manager-api/internal/core/domain"
	"github.com/taskhq/task-manager-api/internal/core/ports"
)

const collectionActivity = "task_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) ports.ActivityRepository {
	return &ActivityRepository{coll: db.Collection(collectionActivity)}
}

func (r *ActivityRepository) Insert(ctx context.Context, a *domain.TaskActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"task_id":      a.TaskID,
		"actor_id":     a.ActorID,
		"action":       string(a.Action),
		"detail":       a.Detail,
		"timestamp":    a.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]*domain.TaskActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.TaskActivity
	for cursor.Next(ctx) {
		var doc struct {
			TaskID    string    `bson:"task_id"`
			ActorID   string    `bson:"actor_id"`
			Action    string    `bson:"action"`
			Detail    string    `bson:"detail"`
			Timestamp time.Time `bson:"timestamp"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, &domain.TaskActivity{
			TaskID:    doc.TaskID,
			ActorID:   doc.ActorID,
			Action:    domain.ActivityAction(doc.Action),
			Detail:    doc.Detail,
			Timestamp: doc.Timestamp,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return out, nil
}
