package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

const collectionEvents = "entregas_eventos"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{db: db}
}

var _ ports.EventRepository = (*EventRepository)(nil)

type eventDocument struct {
	DeliveryID string              `bson:"entrega_id"`
	Kind       string              `bson:"kind"`
	Timestamp  time.Time           `bson:"timestamp"`
	SessionID  string              `bson:"session_id,omitempty"`
	Location   *domain.Coordinates `bson:"location,omitempty"`
	PhotoURL   string              `bson:"foto_url,omitempty"`
}

// InsertEvent persists a delivery event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.DeliveryEvent) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	doc := bson.M{
		"entrega_id":   event.DeliveryID,
		"kind":         string(event.Kind),
		"timestamp":    event.Timestamp.UTC(),
		"processed_at": time.Now().UTC(),
	}
	if event.SessionID != "" {
		doc["session_id"] = event.SessionID
	}
	if event.Location != nil {
		doc["location"] = bson.M{
			"lat":      event.Location.Lat,
			"lng":      event.Location.Lng,
			"accuracy": event.Location.Accuracy,
		}
	}
	if event.PhotoURL != "" {
		doc["foto_url"] = event.PhotoURL
	}

	_, err := r.db.Collection(collectionEvents).InsertOne(ctx, doc)
	return err
}

// ListEvents returns the audit trail of one delivery, oldest first.
func (r *EventRepository) ListEvents(ctx context.Context, deliveryID string) ([]*domain.DeliveryEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cur, err := r.db.Collection(collectionEvents).Find(ctx,
		bson.M{"entrega_id": deliveryID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w: %w", domain.ErrGatewayUnavailable, err)
	}
	defer cur.Close(ctx)

	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list events: %w: %w", domain.ErrGatewayUnavailable, err)
	}

	events := make([]*domain.DeliveryEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, &domain.DeliveryEvent{
			DeliveryID: d.DeliveryID,
			Kind:       domain.EventKind(d.Kind),
			Timestamp:  d.Timestamp,
			SessionID:  d.SessionID,
			Location:   d.Location,
			PhotoURL:   d.PhotoURL,
		})
	}
	return events, nil
}

// EnsureIndexes creates the lookup index used by ListEvents.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(collectionEvents).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entrega_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return err
}
