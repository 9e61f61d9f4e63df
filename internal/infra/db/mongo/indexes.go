package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collHotels       = "hotels"
	collRooms        = "rooms"
	collClients      = "clients"
	collReservations = "reservations"
	collComments     = "comments"
)

// EnsureIndexes creates the indexes the repositories rely on for uniqueness
// and conflict lookups. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		collHotels: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		collRooms: {
			{
				Keys:    bson.D{{Key: "hotel_id", Value: 1}, {Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(indexRoomNumber),
			},
		},
		collClients: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexClientEmail)},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexClientPhone)},
		},
		collReservations: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName(indexResCode)},
			{Keys: bson.D{{Key: "room_ids", Value: 1}, {Key: "range.check_in", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
			{Keys: bson.D{{Key: "hotel_id", Value: 1}}},
		},
		collComments: {
			{Keys: bson.D{{Key: "reservation_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func findOptions(skip, limit int, sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
