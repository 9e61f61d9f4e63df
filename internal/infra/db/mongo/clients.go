package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainclient "hotelbook/internal/domain/client"
)

type ClientRepository struct {
	col *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{col: db.Collection(collClients)}
}

func (r *ClientRepository) ByID(ctx context.Context, id domainclient.ID) (*domainclient.Client, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *ClientRepository) ByEmail(ctx context.Context, email string) (*domainclient.Client, error) {
	return r.findOne(ctx, bson.M{"email": domainclient.NormalizeEmail(email)})
}

func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*domainclient.Client, error) {
	var doc clientDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, notFound(err, domainclient.ErrNotFound)
	}
	return doc.toEntity(), nil
}

func (r *ClientRepository) Find(ctx context.Context, filter domainclient.Filter) ([]*domainclient.Client, error) {
	cur, err := r.col.Find(ctx, bson.M{}, findOptions(filter.Skip, filter.Limit, bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []clientDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainclient.Client, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEntity())
	}
	return out, nil
}

func (r *ClientRepository) Save(ctx context.Context, c *domainclient.Client) error {
	doc := newClientDocument(c)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if name, dup := duplicateIndex(err); dup {
		switch name {
		case indexClientEmail:
			return domainclient.ErrEmailAlreadyUsed
		case indexClientPhone:
			return domainclient.ErrPhoneAlreadyUsed
		}
	}
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, id domainclient.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainclient.ErrNotFound
	}
	return nil
}

type clientDocument struct {
	ID               string   `bson:"_id"`
	Name             string   `bson:"name"`
	Email            string   `bson:"email"`
	Phone            string   `bson:"phone"`
	PasswordHash     string   `bson:"password_hash"`
	Roles            []string `bson:"roles"`
	ResetCode        string   `bson:"reset_code,omitempty"`
	ResetRequestedAt int64    `bson:"reset_requested_at,omitempty"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
}

func newClientDocument(c *domainclient.Client) clientDocument {
	roles := make([]string, 0, len(c.Roles))
	for _, role := range c.Roles {
		roles = append(roles, string(role))
	}
	doc := clientDocument{
		ID:           string(c.ID),
		Name:         c.Name,
		Email:        domainclient.NormalizeEmail(c.Email),
		Phone:        domainclient.NormalizePhone(c.Phone),
		PasswordHash: c.PasswordHash,
		Roles:        roles,
		ResetCode:    c.ResetCode,
		CreatedAt:    c.CreatedAt.UnixMilli(),
		UpdatedAt:    c.UpdatedAt.UnixMilli(),
	}
	if !c.ResetRequestedAt.IsZero() {
		doc.ResetRequestedAt = c.ResetRequestedAt.UnixMilli()
	}
	return doc
}

func (d clientDocument) toEntity() *domainclient.Client {
	roles := make([]domainclient.Role, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainclient.Role(role))
	}
	c := &domainclient.Client{
		ID:           domainclient.ID(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		Roles:        roles,
		ResetCode:    d.ResetCode,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
	if d.ResetRequestedAt != 0 {
		c.ResetRequestedAt = timestampToTime(d.ResetRequestedAt)
	}
	return c
}
