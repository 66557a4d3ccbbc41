package contact

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Submission) error
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Submission, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (Submission, error)
	CountBy(ctx context.Context, field string) (map[string]int, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Submission) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func listQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.RequestType != "" {
		query["request_type"] = filter.RequestType
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return query
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Submission, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.col.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Submission, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return r.col.CountDocuments(ctx, listQuery(filter))
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (Submission, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": updatedAt,
	}}

	var updated Submission
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return Submission{}, err
	}
	return updated, nil
}

// CountBy groups submissions by a stored field, e.g. "status".
func (r *MongoRepository) CountBy(ctx context.Context, field string) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}
