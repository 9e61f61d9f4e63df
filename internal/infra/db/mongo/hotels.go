package mongo

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainhotel "hotelbook/internal/domain/hotel"
)

type HotelRepository struct {
	col *mongo.Collection
}

func NewHotelRepository(db *mongo.Database) *HotelRepository {
	return &HotelRepository{col: db.Collection(collHotels)}
}

func (r *HotelRepository) ByID(ctx context.Context, id domainhotel.ID) (*domainhotel.Hotel, error) {
	var doc hotelDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, notFound(err, domainhotel.ErrNotFound)
	}
	return doc.toEntity(), nil
}

func (r *HotelRepository) Find(ctx context.Context, filter domainhotel.Filter) ([]*domainhotel.Hotel, error) {
	cur, err := r.col.Find(ctx, hotelFilter(filter.Query), findOptions(filter.Skip, filter.Limit, bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []hotelDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainhotel.Hotel, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEntity())
	}
	return out, nil
}

func (r *HotelRepository) Save(ctx context.Context, h *domainhotel.Hotel) error {
	doc := newHotelDocument(h)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *HotelRepository) Delete(ctx context.Context, id domainhotel.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainhotel.ErrNotFound
	}
	return nil
}

// hotelFilter matches the query against name or city, case-insensitive.
func hotelFilter(query string) bson.M {
	query = strings.TrimSpace(query)
	if query == "" {
		return bson.M{}
	}
	pattern := caseInsensitive(query)
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"city": pattern},
	}}
}

func caseInsensitive(query string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
}

type hotelDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Address   string `bson:"address"`
	City      string `bson:"city"`
	Phone     string `bson:"phone"`
	Category  int    `bson:"category"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newHotelDocument(h *domainhotel.Hotel) hotelDocument {
	return hotelDocument{
		ID:        string(h.ID),
		Name:      h.Name,
		Address:   h.Address,
		City:      h.City,
		Phone:     h.Phone,
		Category:  h.Category,
		CreatedAt: h.CreatedAt.UnixMilli(),
		UpdatedAt: h.UpdatedAt.UnixMilli(),
	}
}

func (d hotelDocument) toEntity() *domainhotel.Hotel {
	return &domainhotel.Hotel{
		ID:        domainhotel.ID(d.ID),
		Name:      d.Name,
		Address:   d.Address,
		City:      d.City,
		Phone:     d.Phone,
		Category:  d.Category,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}
