package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestDB connects to MONGODB_URI and returns a throwaway database.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("pharmacy_test_%d", time.Now().UnixNano()))
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMedicineRepository_Mongo(t *testing.T) {
	db := newTestDB(t)
	repo := NewMedicineRepository(db)
	ctx := context.Background()

	m := &entity.Medicine{
		Name: "Paracetamol", Manufacturer: "GSK", BatchNumber: "B1",
		ExpiryDate: time.Now().AddDate(1, 0, 0), Quantity: 5, Price: 1000, MinimumStockLevel: 10,
	}
	require.NoError(t, repo.Create(ctx, m))
	dup := *m
	dup.ID = uuid.Nil
	assert.ErrorIs(t, repo.Create(ctx, &dup), domainRepo.ErrDuplicate)

	ok, err := repo.AtomicDecrementQuantity(ctx, m.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.AtomicDecrementQuantity(ctx, m.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	list, total, err := repo.List(ctx, &domainRepo.MedicineFilterParams{Pagination: pagination.DefaultPagination(), Search: "PARA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	low, err := repo.ListLowStock(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	assert.ErrorIs(t, repo.IncrementQuantity(ctx, uuid.New(), 1), domainRepo.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), domainRepo.ErrNotFound)
}

func TestInvoiceRepository_Mongo(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := &entity.Invoice{
		InvoiceNumber: "INV-1", CustomerName: "Asha", CustomerPhone: "98765",
		DiscountType: enum.DiscountTypeAmount, PaymentMethod: enum.PaymentMethodUPI,
		Items: []entity.InvoiceItem{{MedicineID: uuid.New(), MedicineName: "Paracetamol", Quantity: 3, Price: 1000, Subtotal: 3000}},
		Subtotal: 3000, TotalAmount: 3000,
	}
	require.NoError(t, repo.Create(ctx, inv))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Invoice{InvoiceNumber: "INV-1"}), domainRepo.ErrDuplicate)

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, enum.InvoiceStatusPending, got.Status)
	assert.Equal(t, enum.PaymentMethodUPI, got.PaymentMethod)

	ok, err := repo.MarkRestocked(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkRestocked(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Delete(ctx, inv.ID))
	assert.ErrorIs(t, repo.Delete(ctx, inv.ID), domainRepo.ErrNotFound)
}

func TestIdempotencyRepository_Mongo(t *testing.T) {
	db := newTestDB(t)
	keys := NewIdempotencyRepository(db)
	ctx := context.Background()
	user := uuid.New()

	pending := &entity.IdempotencyKey{Key: "sale-1", UserID: user, Endpoint: "POST /api/v1/invoices", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, keys.Create(ctx, pending))
	assert.ErrorIs(t, keys.Create(ctx, &entity.IdempotencyKey{Key: "sale-1", UserID: user, ExpiresAt: time.Now().Add(time.Minute)}), domainRepo.ErrDuplicate)

	require.NoError(t, keys.Complete(ctx, pending.ID, 201, "{}", time.Now().Add(time.Hour)))
	got, err := keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	require.NoError(t, keys.Delete(ctx, pending.ID))
	got, err = keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	assert.Nil(t, got)
}
