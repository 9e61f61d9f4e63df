package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainreservation "hotelbook/internal/domain/reservation"
)

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collComments)}
}

func (r *CommentRepository) Save(ctx context.Context, c *domaincomment.Comment) error {
	_, err := r.col.InsertOne(ctx, commentDocument{
		ID:            string(c.ID),
		ReservationID: string(c.ReservationID),
		AuthorID:      string(c.AuthorID),
		Content:       c.Content,
		CreatedAt:     c.CreatedAt.UnixMilli(),
	})
	return err
}

func (r *CommentRepository) ByReservations(ctx context.Context, ids []domainreservation.ID) ([]*domaincomment.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, string(id))
	}
	cur, err := r.col.Find(ctx, bson.M{"reservation_id": bson.M{"$in": keys}}, findOptions(0, 0, bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []commentDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domaincomment.Comment, 0, len(docs))
	for _, doc := range docs {
		out = append(out, &domaincomment.Comment{
			ID:            domaincomment.ID(doc.ID),
			ReservationID: domainreservation.ID(doc.ReservationID),
			AuthorID:      domainclient.ID(doc.AuthorID),
			Content:       doc.Content,
			CreatedAt:     timestampToTime(doc.CreatedAt),
		})
	}
	return out, nil
}

func (r *CommentRepository) DeleteByReservation(ctx context.Context, id domainreservation.ID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"reservation_id": string(id)})
	return err
}

type commentDocument struct {
	ID            string `bson:"_id"`
	ReservationID string `bson:"reservation_id"`
	AuthorID      string `bson:"author_id"`
	Content       string `bson:"content"`
	CreatedAt     int64  `bson:"created_at"`
}
