package mongo

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{col: db.Collection(collReservations)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainreservation.ErrNotFound)
	}
	return doc.toEntity(), nil
}

func (r *ReservationRepository) CodeExists(ctx context.Context, code domainreservation.Code) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"code": string(code)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ReservationRepository) Find(ctx context.Context, filter domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	cur, err := r.col.Find(ctx, reservationFilter(filter), findOptions(filter.Skip, filter.Limit, bson.D{{Key: "range.check_in", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []reservationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreservation.Reservation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEntity())
	}
	return out, nil
}

func (r *ReservationRepository) CountConflicts(ctx context.Context, q domainreservation.ConflictQuery) (int, error) {
	n, err := r.col.CountDocuments(ctx, conflictFilter(q))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Save inserts a new reservation (Version 0) or replaces the stored one when
// its version still matches.
func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	doc.Version = res.Version + 1
	if res.Version == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			return saveError(err)
		}
		res.Version = doc.Version
		return nil
	}
	out, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": res.Version}, doc)
	if err != nil {
		return saveError(err)
	}
	if out.MatchedCount == 0 {
		return domainreservation.ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainreservation.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreservation.ErrNotFound
	}
	return nil
}

func saveError(err error) error {
	name, dup := duplicateIndex(err)
	switch {
	case !dup:
		return err
	case name == indexResCode:
		return domainreservation.ErrDuplicateCode
	default:
		return domainreservation.ErrConcurrentUpdate
	}
}

func reservationFilter(f domainreservation.Filter) bson.M {
	filter := bson.M{}
	if f.ClientID != "" {
		filter["client_id"] = string(f.ClientID)
	}
	if f.HotelID != "" {
		filter["hotel_id"] = string(f.HotelID)
	}
	if f.RoomID != "" {
		filter["room_ids"] = string(f.RoomID)
	}
	if q := strings.TrimSpace(f.CodeQuery); q != "" {
		filter["code"] = caseInsensitive(q)
	}
	return filter
}

// conflictFilter selects reservations holding the room whose stay overlaps
// the queried range under the given policy.
func conflictFilter(q domainreservation.ConflictQuery) bson.M {
	start := q.Range.CheckIn.UnixMilli()
	end := q.Range.CheckOut.UnixMilli()
	before, after := "$lte", "$gte"
	if q.Policy == daterange.Strict {
		before, after = "$lt", "$gt"
	}
	filter := bson.M{
		"room_ids":        string(q.RoomID),
		"range.check_in":  bson.M{before: end},
		"range.check_out": bson.M{after: start},
	}
	if q.ExcludeID != "" {
		filter["_id"] = bson.M{"$ne": string(q.ExcludeID)}
	}
	return filter
}

type reservationDocument struct {
	ID        string        `bson:"_id"`
	Code      string        `bson:"code"`
	HotelID   string        `bson:"hotel_id"`
	ClientID  string        `bson:"client_id"`
	RoomIDs   []string      `bson:"room_ids"`
	Range     rangeDocument `bson:"range"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

func newReservationDocument(r *domainreservation.Reservation) reservationDocument {
	rooms := make([]string, 0, len(r.RoomIDs))
	for _, id := range r.RoomIDs {
		rooms = append(rooms, string(id))
	}
	return reservationDocument{
		ID:        string(r.ID),
		Code:      string(r.Code),
		HotelID:   string(r.HotelID),
		ClientID:  string(r.ClientID),
		RoomIDs:   rooms,
		Range:     rangeDocument{CheckIn: r.Range.CheckIn.UnixMilli(), CheckOut: r.Range.CheckOut.UnixMilli()},
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
		Version:   r.Version,
	}
}

func (d reservationDocument) toEntity() *domainreservation.Reservation {
	rooms := make([]domainhotel.RoomID, 0, len(d.RoomIDs))
	for _, id := range d.RoomIDs {
		rooms = append(rooms, domainhotel.RoomID(id))
	}
	return &domainreservation.Reservation{
		ID:       domainreservation.ID(d.ID),
		Code:     domainreservation.Code(d.Code),
		HotelID:  domainhotel.ID(d.HotelID),
		ClientID: domainclient.ID(d.ClientID),
		RoomIDs:  rooms,
		Range: daterange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}
