package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardIndicator is a precomputed metric stored in MongoDB.
type DashboardIndicator struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Value     int64              `bson:"value" json:"value"`
	UpdatedAt time.Time          `bson:"updated_at" json:"-"`
}
