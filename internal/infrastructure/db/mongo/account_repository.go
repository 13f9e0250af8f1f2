package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/louis5103/auth-service/internal/core/domain"
)

const accountCollection = "accounts"

type MongoAccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	Name            string             `bson:"name"`
	PasswordHash    string             `bson:"password_hash"`
	Role            string             `bson:"role"`
	IsActive        bool               `bson:"is_active"`
	IsEmailVerified bool               `bson:"is_email_verified"`
	LastLoginAt     int64              `bson:"last_login_at,omitempty"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func (r *MongoAccountRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoAccount{
		Email:           user.Email,
		Name:            user.Name,
		PasswordHash:    user.PasswordHash,
		Role:            string(user.Role),
		IsActive:        user.IsActive,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt.Unix(),
		UpdatedAt:       user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	created := *user
	created.ID = id.Hex()
	return &created, nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoAccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"last_login_at": at.Unix(),
		"updated_at":    at.Unix(),
	}})
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var ma mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	user := &domain.User{
		ID:              ma.ID.Hex(),
		Email:           ma.Email,
		Name:            ma.Name,
		PasswordHash:    ma.PasswordHash,
		Role:            domain.Role(ma.Role),
		IsActive:        ma.IsActive,
		IsEmailVerified: ma.IsEmailVerified,
		CreatedAt:       unixToTime(ma.CreatedAt),
		UpdatedAt:       unixToTime(ma.UpdatedAt),
	}
	if ma.LastLoginAt != 0 {
		t := unixToTime(ma.LastLoginAt)
		user.LastLoginAt = &t
	}
	return user, nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
