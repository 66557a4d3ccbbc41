package handlers

import (
	"context"
	"errors"
	"time"

	"uniscout-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username or email already exists")
)

type UserStore interface {
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, id, hash string, updatedAt time.Time) error
}

type MongoUserStore struct {
	col *mongo.Collection
}

func NewUserStore(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{col: col}
}

// FindByLogin matches an admin by username or e-mail.
func (s *MongoUserStore) FindByLogin(ctx context.Context, login string) (models.User, error) {
	filter := bson.M{
		"role": models.UserRoleAdmin,
		"$or": bson.A{
			bson.M{"username": login},
			bson.M{"email": login},
		},
	}
	var user models.User
	if err := s.col.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *MongoUserStore) Create(ctx context.Context, user models.User) error {
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (s *MongoUserStore) UpdatePassword(ctx context.Context, id, hash string, updatedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"updatedAt":    updatedAt,
		},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "role": models.UserRoleAdmin}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
