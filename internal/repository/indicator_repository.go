package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndicatorCollection is the MongoDB collection holding dashboard indicators
const IndicatorCollection = "dashboard_indicators"

var ErrIndicatorNotFound = errors.New("indicator not found")

// MongoIndicatorRepository is a MongoDB implementation of IndicatorRepository
type MongoIndicatorRepository struct {
	collection *mongo.Collection
}

// NewIndicatorRepository creates a new IndicatorRepository over db
func NewIndicatorRepository(db *mongo.Database) IndicatorRepository {
	return &MongoIndicatorRepository{collection: db.Collection(IndicatorCollection)}
}

// List returns every indicator ordered by name
func (r *MongoIndicatorRepository) List(ctx context.Context) ([]models.DashboardIndicator, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query indicators: %w", err)
	}
	defer cursor.Close(ctx)

	indicators := []models.DashboardIndicator{}
	if err := cursor.All(ctx, &indicators); err != nil {
		return nil, fmt.Errorf("failed to decode indicators: %w", err)
	}
	return indicators, nil
}

// FindByID finds an indicator by its hex ObjectID. Malformed ids are reported as not found.
func (r *MongoIndicatorRepository) FindByID(ctx context.Context, id string) (*models.DashboardIndicator, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrIndicatorNotFound
	}

	var indicator models.DashboardIndicator
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&indicator)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIndicatorNotFound
		}
		return nil, fmt.Errorf("failed to find indicator: %w", err)
	}
	return &indicator, nil
}

// UpsertByName sets the value of the indicator called name, creating it if needed
func (r *MongoIndicatorRepository) UpsertByName(ctx context.Context, name string, value int64) error {
	filter := bson.M{"name": name}
	update := bson.M{"$set": bson.M{
		"name":       name,
		"value":      value,
		"updated_at": time.Now().UTC(),
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert indicator %q: %w", name, err)
	}
	return nil
}
