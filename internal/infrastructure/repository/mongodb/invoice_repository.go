package mongodb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type invoiceItemDoc struct {
	ID            string  `bson:"id"`
	MedicineID    string  `bson:"medicine_id"`
	MedicineName  string  `bson:"medicine_name"`
	BatchNumber   string  `bson:"batch_number"`
	Quantity      int     `bson:"quantity"`
	Price         int64   `bson:"price"`
	GSTRate       float64 `bson:"gst_rate"`
	TaxableAmount int64   `bson:"taxable_amount"`
	CGST          int64   `bson:"cgst"`
	SGST          int64   `bson:"sgst"`
	Subtotal      int64   `bson:"subtotal"`
}

type invoiceDoc struct {
	ID            string           `bson:"_id"`
	InvoiceNumber string           `bson:"invoice_number"`
	CustomerName  string           `bson:"customer_name"`
	CustomerPhone string           `bson:"customer_phone"`
	DoctorName    string           `bson:"doctor_name"`
	Items         []invoiceItemDoc `bson:"items"`
	Subtotal      int64            `bson:"subtotal"`
	DiscountType  string           `bson:"discount_type"`
	DiscountValue float64          `bson:"discount_value"`
	Discount      int64            `bson:"discount"`
	GSTRate       *float64         `bson:"gst_rate,omitempty"`
	CGST          int64            `bson:"cgst"`
	SGST          int64            `bson:"sgst"`
	TotalTax      int64            `bson:"total_tax"`
	TotalAmount   int64            `bson:"total_amount"`
	PaymentMethod string           `bson:"payment_method"`
	Status        string           `bson:"status"`
	Notes         *string          `bson:"notes,omitempty"`
	RestockedAt   *time.Time       `bson:"restocked_at"`
	CreatedAt     time.Time        `bson:"created_at"`
	UpdatedAt     time.Time        `bson:"updated_at"`
}

func newInvoiceDoc(inv *entity.Invoice) invoiceDoc {
	doc := invoiceDoc{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		DoctorName:    inv.DoctorName,
		Subtotal:      inv.Subtotal,
		DiscountType:  string(inv.DiscountType),
		DiscountValue: inv.DiscountValue,
		Discount:      inv.Discount,
		GSTRate:       inv.GSTRate,
		CGST:          inv.CGST,
		SGST:          inv.SGST,
		TotalTax:      inv.TotalTax,
		TotalAmount:   inv.TotalAmount,
		PaymentMethod: string(inv.PaymentMethod),
		Status:        inv.Status.String(),
		Notes:         inv.Notes,
		RestockedAt:   inv.RestockedAt,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
		Items:         make([]invoiceItemDoc, 0, len(inv.Items)),
	}
	for _, it := range inv.Items {
		doc.Items = append(doc.Items, invoiceItemDoc{
			ID:            it.ID.String(),
			MedicineID:    it.MedicineID.String(),
			MedicineName:  it.MedicineName,
			BatchNumber:   it.BatchNumber,
			Quantity:      it.Quantity,
			Price:         it.Price,
			GSTRate:       it.GSTRate,
			TaxableAmount: it.TaxableAmount,
			CGST:          it.CGST,
			SGST:          it.SGST,
			Subtotal:      it.Subtotal,
		})
	}
	return doc
}

func (d invoiceDoc) toEntity() entity.Invoice {
	id, _ := uuid.Parse(d.ID)
	status, _ := enum.ParseInvoiceStatus(d.Status)
	inv := entity.Invoice{
		ID:            id,
		InvoiceNumber: d.InvoiceNumber,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		DoctorName:    d.DoctorName,
		Subtotal:      d.Subtotal,
		DiscountType:  enum.DiscountType(d.DiscountType),
		DiscountValue: d.DiscountValue,
		Discount:      d.Discount,
		GSTRate:       d.GSTRate,
		CGST:          d.CGST,
		SGST:          d.SGST,
		TotalTax:      d.TotalTax,
		TotalAmount:   d.TotalAmount,
		PaymentMethod: enum.PaymentMethod(d.PaymentMethod),
		Status:        status,
		Notes:         d.Notes,
		RestockedAt:   d.RestockedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Items:         make([]entity.InvoiceItem, 0, len(d.Items)),
	}
	for i, it := range d.Items {
		itemID, _ := uuid.Parse(it.ID)
		medID, _ := uuid.Parse(it.MedicineID)
		inv.Items = append(inv.Items, entity.InvoiceItem{
			ID:            itemID,
			InvoiceID:     id,
			MedicineID:    medID,
			Position:      i,
			MedicineName:  it.MedicineName,
			BatchNumber:   it.BatchNumber,
			Quantity:      it.Quantity,
			Price:         it.Price,
			GSTRate:       it.GSTRate,
			TaxableAmount: it.TaxableAmount,
			CGST:          it.CGST,
			SGST:          it.SGST,
			Subtotal:      it.Subtotal,
		})
	}
	return inv
}

type invoiceRepository struct {
	coll *mongo.Collection
}

// NewInvoiceRepository creates a MongoDB backed invoice repository
func NewInvoiceRepository(db *mongo.Database) domainRepo.InvoiceRepository {
	return &invoiceRepository{coll: db.Collection(InvoicesCollection)}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	now := time.Now()
	invoice.CreatedAt, invoice.UpdatedAt = now, now
	for i := range invoice.Items {
		if invoice.Items[i].ID == uuid.Nil {
			invoice.Items[i].ID = uuid.New()
		}
		invoice.Items[i].InvoiceID = invoice.ID
	}

	_, err := r.coll.InsertOne(ctx, newInvoiceDoc(invoice))
	return translateError(err)
}

func (r *invoiceRepository) findOne(ctx context.Context, filter bson.M) (*entity.Invoice, error) {
	var doc invoiceDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	inv := doc.toEntity()
	return &inv, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, number string) (*entity.Invoice, error) {
	return r.findOne(ctx, bson.M{"invoice_number": number})
}

func (r *invoiceRepository) updateOne(ctx context.Context, id uuid.UUID, set bson.M) error {
	set["updated_at"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) UpdateDetails(ctx context.Context, invoice *entity.Invoice) error {
	return r.updateOne(ctx, invoice.ID, bson.M{
		"customer_name":  invoice.CustomerName,
		"customer_phone": invoice.CustomerPhone,
		"doctor_name":    invoice.DoctorName,
		"payment_method": string(invoice.PaymentMethod),
		"status":         invoice.Status.String(),
		"notes":          invoice.Notes,
	})
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return r.updateOne(ctx, id, bson.M{"status": status.String()})
}

func (r *invoiceRepository) MarkRestocked(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String(), "restocked_at": nil},
		bson.M{"$set": bson.M{
			"restocked_at": at,
			"status":       enum.InvoiceStatusCancelled.String(),
			"updated_at":   time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]entity.Invoice, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []invoiceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Invoice, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var and bson.A
	if s := strings.TrimSpace(params.Search); s != "" {
		and = append(and, orContains(s, "invoice_number", "customer_name", "customer_phone", "doctor_name"))
	}
	if params.Status != nil {
		and = append(and, bson.M{"status": params.Status.String()})
	}
	if params.PaymentMethod != nil {
		and = append(and, bson.M{"payment_method": string(*params.PaymentMethod)})
	}
	created := bson.M{}
	if params.StartDate != nil {
		created["$gte"] = *params.StartDate
	}
	if params.EndDate != nil {
		created["$lt"] = *params.EndDate
	}
	if len(created) > 0 {
		and = append(and, bson.M{"created_at": created})
	}
	filter := bson.M{}
	if len(and) > 0 {
		filter = bson.M{"$and": and}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	invoices, err := r.find(ctx, filter, pageOptions(params.Pagination, newestFirst))
	return invoices, total, err
}

func (r *invoiceRepository) ListAll(ctx context.Context) ([]entity.Invoice, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}
