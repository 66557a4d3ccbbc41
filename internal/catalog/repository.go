package catalog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	ListAll(ctx context.Context) ([]University, error)
	GetBySlug(ctx context.Context, slug string) (University, error)
	Create(ctx context.Context, item University) error
	Update(ctx context.Context, id string, set bson.M) (University, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// ListAll returns the whole catalog ordered by insertion, which is the
// tie-break order the query engine preserves.
func (r *MongoRepository) ListAll(ctx context.Context) ([]University, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]University, 0)
	for cursor.Next(ctx) {
		var u University
		if err := cursor.Decode(&u); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string) (University, error) {
	var u University
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&u); err != nil {
		return University{}, err
	}
	return u, nil
}

func (r *MongoRepository) Create(ctx context.Context, item University) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (University, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set}

	var updated University
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return University{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
