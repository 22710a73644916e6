package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

const collectionDeliveries = "entregas"

// DeliveryRepository implements ports.DeliveryRepository over the "entregas" collection.
type DeliveryRepository struct {
	col *mongo.Collection
}

func NewDeliveryRepository(db *mongo.Database) *DeliveryRepository {
	return &DeliveryRepository{col: db.Collection(collectionDeliveries)}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// List returns every delivery ordered by created_at descending.
func (r *DeliveryRepository) List(ctx context.Context) ([]*domain.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer cur.Close(ctx)

	deliveries := make([]*domain.Delivery, 0)
	if err := cur.All(ctx, &deliveries); err != nil {
		return nil, fmt.Errorf("decode deliveries: %w", err)
	}
	return deliveries, nil
}

// FindOne returns the newest delivery matching filter.
func (r *DeliveryRepository) FindOne(ctx context.Context, f ports.DeliveryFilter) (*domain.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	filter := bson.M{}
	if f.ID != "" {
		filter["_id"] = f.ID
	}
	if f.AccessCode != "" {
		filter["codigo_acesso"] = f.AccessCode
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}

	var d domain.Delivery
	err := r.col.FindOne(ctx, filter, options.FindOne().SetSort(newestFirst)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByIdempotencyKey retrieves an existing delivery that was created with the given key.
func (r *DeliveryRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var d domain.Delivery
	err := r.col.FindOne(ctx, bson.M{"idempotency_key": key}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeliveryNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a new delivery document.
func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	return err
}

// UpdateLocation sets every located field in one $set, guarded by the
// record still being pending. A miss is disambiguated with a second read.
func (r *DeliveryRepository) UpdateLocation(ctx context.Context, id string, u domain.LocationUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": string(domain.StatusPending)}
	update := bson.M{"$set": bson.M{
		"latitude":                u.Latitude,
		"longitude":               u.Longitude,
		"precisao_gps":            u.Accuracy,
		"status":                  string(domain.StatusLocated),
		"confirmado_pelo_cliente": true,
		"data_localizacao":        u.LocatedAt.UTC(),
		"foto_url":                u.PhotoURL,
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if n == 0 {
		return domain.ErrDeliveryNotFound
	}
	return domain.ErrAlreadyLocated
}

// EnsureIndexes creates the indexes backing the dashboard and code lookups.
func (r *DeliveryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "codigo_acesso", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
