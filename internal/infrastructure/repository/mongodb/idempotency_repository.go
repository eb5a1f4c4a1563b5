package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type idempotencyDoc struct {
	ID           string    `bson:"_id"`
	Key          string    `bson:"key"`
	UserID       string    `bson:"user_id"`
	Endpoint     string    `bson:"endpoint"`
	RequestHash  string    `bson:"request_hash,omitempty"`
	ResponseCode int       `bson:"response_code"`
	ResponseBody string    `bson:"response_body"`
	CreatedAt    time.Time `bson:"created_at"`
	ExpiresAt    time.Time `bson:"expires_at"`
}

type idempotencyRepository struct {
	coll *mongo.Collection
}

// NewIdempotencyRepository creates a MongoDB backed idempotency store.
// Expired keys are also removed by the TTL index from EnsureIndexes.
func NewIdempotencyRepository(db *mongo.Database) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{coll: db.Collection(IdempotencyKeysCollection)}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	var doc idempotencyDoc
	err := r.coll.FindOne(ctx, bson.M{
		"key":        key,
		"user_id":    userID.String(),
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}

	id, _ := uuid.Parse(doc.ID)
	return &entity.IdempotencyKey{
		ID:           id,
		Key:          doc.Key,
		UserID:       userID,
		Endpoint:     doc.Endpoint,
		RequestHash:  doc.RequestHash,
		ResponseCode: doc.ResponseCode,
		ResponseBody: doc.ResponseBody,
		CreatedAt:    doc.CreatedAt,
		ExpiresAt:    doc.ExpiresAt,
	}, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, k *entity.IdempotencyKey) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	k.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, idempotencyDoc{
		ID:           k.ID.String(),
		Key:          k.Key,
		UserID:       k.UserID.String(),
		Endpoint:     k.Endpoint,
		RequestHash:  k.RequestHash,
		ResponseCode: k.ResponseCode,
		ResponseBody: k.ResponseBody,
		CreatedAt:    k.CreatedAt,
		ExpiresAt:    k.ExpiresAt,
	})
	return translateError(err)
}

func (r *idempotencyRepository) Complete(ctx context.Context, id uuid.UUID, code int, body string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{
		"response_code": code,
		"response_body": body,
		"expires_at":    expiresAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *idempotencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

func (r *idempotencyRepository) DeleteExpiredKey(ctx context.Context, key string, userID uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{
		"key":        key,
		"user_id":    userID.String(),
		"expires_at": bson.M{"$lte": time.Now()},
	})
	return err
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	return err
}
