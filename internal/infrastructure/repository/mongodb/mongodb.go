// Package mongodb implements the domain repositories on MongoDB. Documents
// use the UUID string as _id and embed invoice items in the invoice.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	MedicinesCollection       = "medicines"
	InvoicesCollection        = "invoices"
	StockMovementsCollection  = "stock_movements"
	UsersCollection           = "users"
	IdempotencyKeysCollection = "idempotency_keys"
)

// EnsureIndexes creates the unique and lookup indexes every repository
// relies on. It is safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		MedicinesCollection: {
			{Keys: bson.D{{Key: "batch_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		InvoicesCollection: {
			{Keys: bson.D{{Key: "invoice_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		StockMovementsCollection: {
			{Keys: bson.D{{Key: "medicine_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		IdempotencyKeysCollection: {
			{Keys: bson.D{{Key: "key", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", domainRepo.ErrDuplicate, err)
	}
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// containsRegex matches s anywhere in the field, case-insensitively and
// literally.
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func orContains(search string, fields ...string) bson.M {
	re := containsRegex(search)
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

func pageOptions(p *pagination.PaginationParams, sort bson.D) *options.FindOptions {
	p.Validate()
	return options.Find().
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.PerPage)).
		SetSort(sort)
}
