package events

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchiveCollection stores one document per accepted event.
const ArchiveCollection = "telemetry_events"

// ArchiveDocument is the stored shape of an event.
type ArchiveDocument struct {
	Type     string    `bson:"type"`
	DeviceID string    `bson:"device_id"`
	Category string    `bson:"category,omitempty"`
	Count    int       `bson:"count"`
	Payload  bson.D    `bson:"payload,omitempty"`
	At       time.Time `bson:"at"`
}

// MongoArchive appends events to MongoDB. It is write-only: no read path consults it.
type MongoArchive struct {
	col *mongo.Collection
}

func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{col: db.Collection(ArchiveCollection)}
}

// EnsureIndexes creates the (device_id, at) index used to page a device's history.
func (a *MongoArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "device_id", Value: 1},
			{Key: "at", Value: -1},
		},
		Options: options.Index().SetName("idx_device_at"),
	})
	return err
}

func (a *MongoArchive) Publish(ctx context.Context, e Event) error {
	doc, err := toArchiveDocument(e)
	if err != nil {
		return err
	}
	_, err = a.col.InsertOne(ctx, doc)
	return err
}

func toArchiveDocument(e Event) (ArchiveDocument, error) {
	doc := ArchiveDocument{
		Type:     string(e.Type),
		DeviceID: e.DeviceID,
		Category: string(e.Category),
		Count:    e.Count,
		At:       e.At.UTC(),
	}
	if len(e.Payload) > 0 {
		if err := bson.UnmarshalExtJSON(e.Payload, false, &doc.Payload); err != nil {
			return ArchiveDocument{}, fmt.Errorf("archive payload: %w", err)
		}
	}
	return doc, nil
}
