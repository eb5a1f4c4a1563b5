package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type stockMovementDoc struct {
	ID            string    `bson:"_id"`
	MedicineID    string    `bson:"medicine_id"`
	MedicineName  string    `bson:"medicine_name"`
	Type          string    `bson:"type"`
	QuantityDelta int       `bson:"quantity_delta"`
	QuantityAfter *int      `bson:"quantity_after,omitempty"`
	Reference     string    `bson:"reference,omitempty"`
	InvoiceID     string    `bson:"invoice_id,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
}

type stockMovementRepository struct {
	coll *mongo.Collection
}

// NewStockMovementRepository creates a MongoDB backed stock ledger
func NewStockMovementRepository(db *mongo.Database) domainRepo.StockMovementRepository {
	return &stockMovementRepository{coll: db.Collection(StockMovementsCollection)}
}

func (r *stockMovementRepository) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	doc := stockMovementDoc{
		ID:            m.ID.String(),
		MedicineID:    m.MedicineID.String(),
		MedicineName:  m.MedicineName,
		Type:          string(m.Type),
		QuantityDelta: m.QuantityDelta,
		QuantityAfter: m.QuantityAfter,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
	if m.InvoiceID != nil {
		doc.InvoiceID = m.InvoiceID.String()
	}
	_, err := r.coll.InsertOne(ctx, doc)
	return err
}

func (r *stockMovementRepository) ListByMedicine(ctx context.Context, medicineID uuid.UUID, params *pagination.PaginationParams) ([]entity.StockMovement, int64, error) {
	filter := bson.M{"medicine_id": medicineID.String()}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, pageOptions(params, bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var docs []stockMovementDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	out := make([]entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		id, _ := uuid.Parse(d.ID)
		m := entity.StockMovement{
			ID:            id,
			MedicineID:    medicineID,
			MedicineName:  d.MedicineName,
			Type:          enum.MovementType(d.Type),
			QuantityDelta: d.QuantityDelta,
			QuantityAfter: d.QuantityAfter,
			Reference:     d.Reference,
			CreatedAt:     d.CreatedAt,
		}
		if invID, err := uuid.Parse(d.InvoiceID); err == nil {
			m.InvoiceID = &invID
		}
		out = append(out, m)
	}
	return out, total, nil
}
