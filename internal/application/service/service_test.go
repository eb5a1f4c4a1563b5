package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/database"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	medicineRepo repository.MedicineRepository
	invoiceRepo  repository.InvoiceRepository
	movementRepo repository.StockMovementRepository
	userRepo     repository.UserRepository

	stock     *StockService
	medicines *MedicineService
	invoices  *InvoiceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		medicineRepo: infraRepo.NewMedicineRepository(db),
		invoiceRepo:  infraRepo.NewInvoiceRepository(db),
		movementRepo: infraRepo.NewStockMovementRepository(db),
		userRepo:     infraRepo.NewUserRepository(db),
	}
	env.stock = NewStockService(env.medicineRepo, env.movementRepo)
	env.medicines = NewMedicineService(env.medicineRepo, env.stock)
	env.invoices = NewInvoiceService(env.invoiceRepo, env.medicineRepo, env.stock, nil, 0)
	return env
}

func (env *testEnv) addMedicine(t *testing.T, name, batch string, qty int, price float64) *entity.Medicine {
	t.Helper()
	m, err := env.medicines.CreateMedicine(context.Background(), &CreateMedicineInput{
		Name:         name,
		Manufacturer: "Cipla",
		Category:     "Tablets",
		BatchNumber:  batch,
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
		Quantity:     qty,
		Price:        price,
	})
	require.NoError(t, err)
	return m
}

func (env *testEnv) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	m, err := env.medicineRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.Quantity
}

func assertAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func sale(id uuid.UUID, qty int) InvoiceItemInput {
	return InvoiceItemInput{MedicineID: id, Quantity: qty}
}

func invoiceInput(items ...InvoiceItemInput) *CreateInvoiceInput {
	return &CreateInvoiceInput{
		CustomerName:  "Ravi Kumar",
		CustomerPhone: "9876543210",
		Items:         items,
		PaymentMethod: "Cash",
	}
}
