package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type medicineDoc struct {
	ID                string    `bson:"_id"`
	Name              string    `bson:"name"`
	Manufacturer      string    `bson:"manufacturer"`
	Category          string    `bson:"category"`
	BatchNumber       string    `bson:"batch_number"`
	ExpiryDate        time.Time `bson:"expiry_date"`
	Quantity          int       `bson:"quantity"`
	Price             int64     `bson:"price"`
	GSTRate           float64   `bson:"gst_rate"`
	MinimumStockLevel int       `bson:"minimum_stock_level"`
	Description       *string   `bson:"description,omitempty"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func newMedicineDoc(m *entity.Medicine) medicineDoc {
	return medicineDoc{
		ID:                m.ID.String(),
		Name:              m.Name,
		Manufacturer:      m.Manufacturer,
		Category:          m.Category,
		BatchNumber:       m.BatchNumber,
		ExpiryDate:        m.ExpiryDate,
		Quantity:          m.Quantity,
		Price:             m.Price,
		GSTRate:           m.GSTRate,
		MinimumStockLevel: m.MinimumStockLevel,
		Description:       m.Description,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func (d medicineDoc) toEntity() entity.Medicine {
	id, _ := uuid.Parse(d.ID)
	return entity.Medicine{
		ID:                id,
		Name:              d.Name,
		Manufacturer:      d.Manufacturer,
		Category:          d.Category,
		BatchNumber:       d.BatchNumber,
		ExpiryDate:        d.ExpiryDate,
		Quantity:          d.Quantity,
		Price:             d.Price,
		GSTRate:           d.GSTRate,
		MinimumStockLevel: d.MinimumStockLevel,
		Description:       d.Description,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type medicineRepository struct {
	coll *mongo.Collection
}

// NewMedicineRepository creates a MongoDB backed medicine repository
func NewMedicineRepository(db *mongo.Database) domainRepo.MedicineRepository {
	return &medicineRepository{coll: db.Collection(MedicinesCollection)}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *entity.Medicine) error {
	if medicine.ID == uuid.Nil {
		medicine.ID = uuid.New()
	}
	now := time.Now()
	medicine.CreatedAt, medicine.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, newMedicineDoc(medicine))
	return translateError(err)
}

func (r *medicineRepository) findOne(ctx context.Context, filter bson.M) (*entity.Medicine, error) {
	var doc medicineDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	m := doc.toEntity()
	return &m, nil
}

func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *medicineRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*entity.Medicine, error) {
	return r.findOne(ctx, bson.M{"batch_number": batchNumber})
}

func (r *medicineRepository) UpdateDetails(ctx context.Context, medicine *entity.Medicine) error {
	medicine.UpdatedAt = time.Now()
	set := bson.M{
		"name":                medicine.Name,
		"manufacturer":        medicine.Manufacturer,
		"category":            medicine.Category,
		"batch_number":        medicine.BatchNumber,
		"expiry_date":         medicine.ExpiryDate,
		"price":               medicine.Price,
		"gst_rate":            medicine.GSTRate,
		"minimum_stock_level": medicine.MinimumStockLevel,
		"description":         medicine.Description,
		"updated_at":          medicine.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": medicine.ID.String()}, bson.M{"$set": set})
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *medicineRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]entity.Medicine, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []medicineDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Medicine, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

var lowStockExpr = bson.M{"$expr": bson.M{"$lte": bson.A{"$quantity", "$minimum_stock_level"}}}

func (r *medicineRepository) List(ctx context.Context, params *domainRepo.MedicineFilterParams) ([]entity.Medicine, int64, error) {
	var and bson.A
	if s := strings.TrimSpace(params.Search); s != "" {
		and = append(and, orContains(s, "name", "manufacturer", "batch_number"))
	}
	if params.Category != "" {
		and = append(and, bson.M{"category": params.Category})
	}
	if params.LowStock {
		and = append(and, lowStockExpr)
	}
	filter := bson.M{}
	if len(and) > 0 {
		filter = bson.M{"$and": and}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	col, desc := params.SortColumn()
	dir := 1
	if desc {
		dir = -1
	}
	medicines, err := r.find(ctx, filter, pageOptions(params.Pagination, bson.D{{Key: col, Value: dir}, {Key: "_id", Value: 1}}))
	return medicines, total, err
}

func (r *medicineRepository) ListAll(ctx context.Context) ([]entity.Medicine, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *medicineRepository) ListLowStock(ctx context.Context, limit int) ([]entity.Medicine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}, {Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, lowStockExpr, opts)
}

// AtomicDecrementQuantity relies on the single-document atomicity of
// updateOne: the $gte guard and the $inc are applied together.
func (r *medicineRepository) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "quantity": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"quantity": -amount},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *medicineRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{
			"$inc": bson.M{"quantity": amount},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}
