package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newMedicine(name, manufacturer, batch string, qty int) *entity.Medicine {
	return &entity.Medicine{
		Name:              name,
		Manufacturer:      manufacturer,
		BatchNumber:       batch,
		ExpiryDate:        time.Now().AddDate(1, 0, 0),
		Quantity:          qty,
		Price:             1000,
		MinimumStockLevel: 10,
	}
}

func TestMedicineRepository_CreateDuplicateBatch(t *testing.T) {
	repo := NewMedicineRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newMedicine("Paracetamol", "GSK", "B1", 5)))
	err := repo.Create(ctx, newMedicine("Other", "GSK", "B1", 5))
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
}

func TestMedicineRepository_ListSearch(t *testing.T) {
	repo := NewMedicineRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newMedicine("Paracetamol", "GSK", "B1", 5)))
	require.NoError(t, repo.Create(ctx, newMedicine("Cough Syrup", "Parabolic Labs", "B2", 5)))
	require.NoError(t, repo.Create(ctx, newMedicine("Vitamin C", "Abbott", "XPARA-9", 5)))
	require.NoError(t, repo.Create(ctx, newMedicine("Ibuprofen", "Cipla", "IB-1", 5)))

	got, total, err := repo.List(ctx, &domainRepo.MedicineFilterParams{
		Pagination: pagination.DefaultPagination(),
		Search:     "PaRa",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, m := range got {
		assert.NotEqual(t, "Ibuprofen", m.Name)
	}

	_, total, err = repo.List(ctx, &domainRepo.MedicineFilterParams{
		Pagination: pagination.DefaultPagination(),
		Search:     "%",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestMedicineRepository_AtomicDecrement(t *testing.T) {
	repo := NewMedicineRepository(newTestDB(t))
	ctx := context.Background()

	m := newMedicine("Paracetamol", "GSK", "B1", 5)
	require.NoError(t, repo.Create(ctx, m))

	ok, err := repo.AtomicDecrementQuantity(ctx, m.ID, 6)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.AtomicDecrementQuantity(ctx, m.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	require.NoError(t, repo.IncrementQuantity(ctx, m.ID, 4))
	got, _ = repo.GetByID(ctx, m.ID)
	assert.Equal(t, 6, got.Quantity)

	assert.ErrorIs(t, repo.IncrementQuantity(ctx, uuid.New(), 1), domainRepo.ErrNotFound)
	ok, err = repo.AtomicDecrementQuantity(ctx, uuid.New(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMedicineRepository_UpdateDetailsLeavesQuantity(t *testing.T) {
	repo := NewMedicineRepository(newTestDB(t))
	ctx := context.Background()

	m := newMedicine("Paracetamol", "GSK", "B1", 5)
	require.NoError(t, repo.Create(ctx, m))

	m.Name = "Paracetamol 500"
	m.Quantity = 999
	require.NoError(t, repo.UpdateDetails(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500", got.Name)
	assert.Equal(t, 5, got.Quantity)
}

func TestMedicineRepository_LowStockAndDelete(t *testing.T) {
	repo := NewMedicineRepository(newTestDB(t))
	ctx := context.Background()

	a := newMedicine("A", "X", "B1", 8)
	b := newMedicine("B", "X", "B2", 2)
	c := newMedicine("C", "X", "B3", 50)
	for _, m := range []*entity.Medicine{a, b, c} {
		require.NoError(t, repo.Create(ctx, m))
	}

	low, err := repo.ListLowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "B", low[0].Name)
	assert.Equal(t, "A", low[1].Name)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), domainRepo.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, c.ID))
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func newInvoice(number string, medicineID uuid.UUID) *entity.Invoice {
	return &entity.Invoice{
		InvoiceNumber: number,
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		DiscountType:  enum.DiscountTypeAmount,
		PaymentMethod: enum.PaymentMethodCash,
		Subtotal:      3000,
		TotalAmount:   3000,
		Items: []entity.InvoiceItem{
			{MedicineID: medicineID, Position: 0, MedicineName: "Paracetamol", Quantity: 3, Price: 1000, TaxableAmount: 3000, Subtotal: 3000},
			{MedicineID: medicineID, Position: 1, MedicineName: "Second line", Quantity: 1, Price: 0},
		},
	}
}

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))
	ctx := context.Background()

	inv := newInvoice("INV-1", uuid.New())
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Paracetamol", got.Items[0].MedicineName)
	assert.Equal(t, enum.InvoiceStatusPending, got.Status)

	byNumber, err := repo.GetByNumber(ctx, "INV-1")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.Create(ctx, newInvoice("INV-1", uuid.New()))
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
}

func TestInvoiceRepository_StatusAndRestock(t *testing.T) {
	repo := NewInvoiceRepository(newTestDB(t))
	ctx := context.Background()

	inv := newInvoice("INV-2", uuid.New())
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, repo.UpdateStatus(ctx, inv.ID, enum.InvoiceStatusPaid))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), enum.InvoiceStatusPaid), domainRepo.ErrNotFound)

	ok, err := repo.MarkRestocked(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkRestocked(ctx, inv.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := repo.GetByID(ctx, inv.ID)
	assert.Equal(t, enum.InvoiceStatusCancelled, got.Status)
	assert.True(t, got.IsRestocked())
}

func TestInvoiceRepository_ListAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	a := newInvoice("INV-A", uuid.New())
	b := newInvoice("INV-B", uuid.New())
	b.CustomerName = "Ravi"
	b.DoctorName = "Dr. Mehta"
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	got, total, err := repo.List(ctx, &domainRepo.InvoiceFilterParams{
		Pagination: pagination.DefaultPagination(),
		Search:     "mehta",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "INV-B", got[0].InvoiceNumber)
	assert.Len(t, got[0].Items, 2)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domainRepo.ErrNotFound)

	var items int64
	require.NoError(t, db.Model(&entity.InvoiceItem{}).Where("invoice_id = ?", a.ID).Count(&items).Error)
	assert.Equal(t, int64(0), items)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStockMovementRepository(t *testing.T) {
	repo := NewStockMovementRepository(newTestDB(t))
	ctx := context.Background()
	medID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &entity.StockMovement{
			MedicineID: medID, Type: enum.MovementSale, QuantityDelta: -1,
		}))
	}
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{MedicineID: uuid.New(), Type: enum.MovementRestock, QuantityDelta: 5}))

	got, total, err := repo.ListByMedicine(ctx, medID, &pagination.PaginationParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, got, 2)
}

func TestUserAndIdempotencyRepositories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	u := &entity.User{Name: "Admin", Email: "admin@x.com", Password: "hash", Role: enum.RoleAdmin, IsActive: true}
	require.NoError(t, users.Create(ctx, u))
	assert.ErrorIs(t, users.Create(ctx, &entity.User{Name: "B", Email: "admin@x.com", Password: "h", Role: enum.RolePharmacist}), domainRepo.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NoError(t, users.UpdateLastLogin(ctx, u.ID, time.Now()))

	keys := NewIdempotencyRepository(db)
	require.NoError(t, keys.Create(ctx, &entity.IdempotencyKey{
		Key: "k1", UserID: u.ID, Endpoint: "POST /api/v1/invoices",
		ResponseCode: 201, ResponseBody: "{}", ExpiresAt: time.Now().Add(time.Hour),
	}))
	found, err := keys.GetByKey(ctx, "k1", u.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 201, found.ResponseCode)

	other, err := keys.GetByKey(ctx, "k1", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestIdempotencyRepository_Reservation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	keys := NewIdempotencyRepository(db)
	user := uuid.New()

	pending := &entity.IdempotencyKey{Key: "sale-1", UserID: user, Endpoint: "POST /api/v1/invoices", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, keys.Create(ctx, pending))
	assert.ErrorIs(t, keys.Create(ctx, &entity.IdempotencyKey{Key: "sale-1", UserID: user, Endpoint: "x", ExpiresAt: time.Now().Add(time.Minute)}), domainRepo.ErrDuplicate)

	got, err := keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, got.ResponseCode)

	require.NoError(t, keys.Complete(ctx, pending.ID, 201, `{"success":true}`, time.Now().Add(time.Hour)))
	got, err = keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	assert.Equal(t, 201, got.ResponseCode)
	assert.Equal(t, `{"success":true}`, got.ResponseBody)
	assert.ErrorIs(t, keys.Complete(ctx, uuid.New(), 201, "", time.Now()), domainRepo.ErrNotFound)

	// a live key is kept, an expired one is removed
	require.NoError(t, keys.DeleteExpiredKey(ctx, "sale-1", user))
	got, err = keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	assert.NotNil(t, got)

	stale := &entity.IdempotencyKey{Key: "sale-2", UserID: user, Endpoint: "x", ExpiresAt: time.Now().Add(-time.Second)}
	require.NoError(t, keys.Create(ctx, stale))
	require.NoError(t, keys.DeleteExpiredKey(ctx, "sale-2", user))
	require.NoError(t, keys.Create(ctx, &entity.IdempotencyKey{Key: "sale-2", UserID: user, Endpoint: "x", ExpiresAt: time.Now().Add(time.Minute)}))

	require.NoError(t, keys.Delete(ctx, pending.ID))
	got, err = keys.GetByKey(ctx, "sale-1", user)
	require.NoError(t, err)
	assert.Nil(t, got)
}
