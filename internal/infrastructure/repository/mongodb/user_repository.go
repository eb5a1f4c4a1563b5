package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Email       string     `bson:"email"`
	Password    string     `bson:"password"`
	Role        string     `bson:"role"`
	IsActive    bool       `bson:"is_active"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func (d userDoc) toEntity() *entity.User {
	id, _ := uuid.Parse(d.ID)
	return &entity.User{
		ID:          id,
		Name:        d.Name,
		Email:       d.Email,
		Password:    d.Password,
		Role:        enum.Role(d.Role),
		IsActive:    d.IsActive,
		LastLoginAt: d.LastLoginAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a MongoDB backed user repository
func NewUserRepository(db *mongo.Database) domainRepo.UserRepository {
	return &userRepository{coll: db.Collection(UsersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, userDoc{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return translateError(err)
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{"last_login_at": at}})
	return err
}
