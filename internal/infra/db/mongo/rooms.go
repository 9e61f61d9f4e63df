package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainhotel "hotelbook/internal/domain/hotel"
)

type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(collRooms)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainhotel.RoomID) (*domainhotel.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainhotel.ErrRoomNotFound)
	}
	return doc.toEntity(), nil
}

func (r *RoomRepository) ByHotel(ctx context.Context, hotelID domainhotel.ID) ([]*domainhotel.Room, error) {
	return r.Find(ctx, domainhotel.RoomFilter{HotelID: hotelID})
}

func (r *RoomRepository) Find(ctx context.Context, filter domainhotel.RoomFilter) ([]*domainhotel.Room, error) {
	cur, err := r.col.Find(ctx, roomFilter(filter), findOptions(filter.Skip, filter.Limit, bson.D{{Key: "hotel_id", Value: 1}, {Key: "number", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainhotel.Room, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEntity())
	}
	return out, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainhotel.Room) error {
	doc := newRoomDocument(room)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if name, dup := duplicateIndex(err); dup && name == indexRoomNumber {
		return domainhotel.ErrRoomNumberTaken
	}
	return err
}

func (r *RoomRepository) Delete(ctx context.Context, id domainhotel.RoomID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainhotel.ErrRoomNotFound
	}
	return nil
}

func roomFilter(f domainhotel.RoomFilter) bson.M {
	filter := bson.M{}
	if f.HotelID != "" {
		filter["hotel_id"] = string(f.HotelID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := caseInsensitive(q)
		filter["$or"] = bson.A{
			bson.M{"number": pattern},
			bson.M{"type": pattern},
		}
	}
	return filter
}

type roomDocument struct {
	ID        string  `bson:"_id"`
	HotelID   string  `bson:"hotel_id"`
	Number    string  `bson:"number"`
	Capacity  int     `bson:"capacity"`
	Price     float64 `bson:"price"`
	Type      string  `bson:"type"`
	CreatedAt int64   `bson:"created_at"`
	UpdatedAt int64   `bson:"updated_at"`
}

func newRoomDocument(r *domainhotel.Room) roomDocument {
	return roomDocument{
		ID:        string(r.ID),
		HotelID:   string(r.HotelID),
		Number:    r.Number,
		Capacity:  r.Capacity,
		Price:     r.Price,
		Type:      r.Type,
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
}

func (d roomDocument) toEntity() *domainhotel.Room {
	return &domainhotel.Room{
		ID:        domainhotel.RoomID(d.ID),
		HotelID:   domainhotel.ID(d.HotelID),
		Number:    d.Number,
		Capacity:  d.Capacity,
		Price:     d.Price,
		Type:      d.Type,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
