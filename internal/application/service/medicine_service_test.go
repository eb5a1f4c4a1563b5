package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMedicine_Defaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)
	assert.Equal(t, entity.DefaultMinimumStockLevel, m.MinimumStockLevel)
	assert.Equal(t, int64(1000), m.Price)

	movements, total, err := env.stock.ListMovements(ctx, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, enum.MovementAdjustment, movements[0].Type)
	assert.Equal(t, 5, movements[0].QuantityDelta)
}

func TestCreateMedicine_DuplicateBatch(t *testing.T) {
	env := newTestEnv(t)
	env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)

	_, err := env.medicines.CreateMedicine(context.Background(), &CreateMedicineInput{
		Name:         "Paracetamol 650",
		Manufacturer: "GSK",
		BatchNumber:  "PARA-1",
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
		Quantity:     1,
		Price:        1,
	})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "PARA-1")
}

func TestCreateMedicine_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.medicines.CreateMedicine(context.Background(), &CreateMedicineInput{
		Name:     "Paracetamol",
		Quantity: -1,
		Price:    -2,
	})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	fields := map[string]bool{}
	for _, fe := range appErr.Errors {
		fields[fe.Field] = true
	}
	for _, f := range []string{"manufacturer", "batch_number", "expiry_date", "quantity", "price"} {
		assert.True(t, fields[f], f)
	}
}

func TestListMedicines_Search(t *testing.T) {
	env := newTestEnv(t)
	env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)
	env.addMedicine(t, "Crocin", "CR-PARA", 5, 10)
	env.addMedicine(t, "Ibuprofen", "IBU-1", 50, 10)

	items, total, err := env.medicines.ListMedicines(context.Background(), &repository.MedicineFilterParams{
		Pagination: pagination.DefaultPagination(),
		Search:     "para",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}

func TestListLowStock_DefaultLimit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		env.addMedicine(t, "Med", "B-"+string(rune('A'+i)), i, 1)
	}
	env.addMedicine(t, "Plenty", "PLENTY", 100, 1)

	items, err := env.medicines.ListLowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultLowStockLimit)
	assert.Equal(t, 0, items[0].Quantity)
}

func TestUpdateMedicine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)
	env.addMedicine(t, "Crocin", "CR-1", 5, 10)

	name := "Paracetamol 500"
	price := 12.75
	qty := 9
	updated, err := env.medicines.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{Name: &name, Price: &price, Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500", updated.Name)
	assert.Equal(t, int64(1275), updated.Price)
	assert.Equal(t, 9, updated.Quantity)

	qty = 2
	updated, err = env.medicines.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)

	movements, _, err := env.stock.ListMovements(ctx, m.ID, nil)
	require.NoError(t, err)
	var deltas []int
	for _, mv := range movements {
		deltas = append(deltas, mv.QuantityDelta)
	}
	assert.ElementsMatch(t, []int{5, 4, -7}, deltas)

	batch := "CR-1"
	_, err = env.medicines.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{BatchNumber: &batch})
	assertAppError(t, err, http.StatusBadRequest)

	_, err = env.medicines.UpdateMedicine(ctx, uuid.New(), &UpdateMedicineInput{Name: &name})
	assertAppError(t, err, http.StatusNotFound)
}

func TestDeleteMedicine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)
	env.addMedicine(t, "Crocin", "CR-1", 5, 10)

	assertAppError(t, env.medicines.DeleteMedicine(ctx, uuid.New()), http.StatusNotFound)
	_, total, err := env.medicines.ListMedicines(ctx, &repository.MedicineFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	require.NoError(t, env.medicines.DeleteMedicine(ctx, m.ID))
	_, err = env.medicines.GetMedicine(ctx, m.ID)
	assertAppError(t, err, http.StatusNotFound)
}

func TestRestock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)

	updated, err := env.stock.Restock(ctx, m.ID, &RestockInput{Quantity: 20, Reference: "PO-77"})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)

	movements, _, err := env.stock.ListMovements(ctx, m.ID, pagination.DefaultPagination())
	require.NoError(t, err)
	var found bool
	for _, mv := range movements {
		if mv.Type == enum.MovementRestock {
			found = true
			assert.Equal(t, "PO-77", mv.Reference)
			require.NotNil(t, mv.QuantityAfter)
			assert.Equal(t, 25, *mv.QuantityAfter)
		}
	}
	assert.True(t, found)

	_, err = env.stock.Restock(ctx, m.ID, &RestockInput{Quantity: 0})
	assertAppError(t, err, http.StatusBadRequest)
	_, err = env.stock.Restock(ctx, uuid.New(), &RestockInput{Quantity: 1})
	assertAppError(t, err, http.StatusNotFound)
}

func TestCreateMedicine_RejectsNonFiniteNumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		price float64
		gst   float64
		field string
	}{
		{"nan price", math.NaN(), 0, "price"},
		{"infinite price", math.Inf(1), 0, "price"},
		{"nan gst", 10, math.NaN(), "gst_rate"},
		{"infinite gst", 10, math.Inf(1), "gst_rate"},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.medicines.CreateMedicine(ctx, &CreateMedicineInput{
				Name:         "Paracetamol",
				Manufacturer: "Cipla",
				BatchNumber:  fmt.Sprintf("NF-%d", i),
				ExpiryDate:   time.Now().AddDate(1, 0, 0),
				Quantity:     5,
				Price:        tc.price,
				GSTRate:      tc.gst,
			})
			appErr := assertAppError(t, err, http.StatusBadRequest)
			require.Len(t, appErr.Errors, 1)
			assert.Equal(t, tc.field, appErr.Errors[0].Field)
		})
	}

	nan := math.NaN()
	m := env.addMedicine(t, "Crocin", "CR-1", 5, 10)
	_, err := env.medicines.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{Price: &nan})
	assertAppError(t, err, http.StatusBadRequest)
}

// staleMedicineRepo reports extra units on its next read, as if a sale
// landed between the read and the stock update.
type staleMedicineRepo struct {
	repository.MedicineRepository
	extra *int
}

func (r staleMedicineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	m, err := r.MedicineRepository.GetByID(ctx, id)
	if m != nil && *r.extra > 0 {
		m.Quantity += *r.extra
		*r.extra = 0
	}
	return m, err
}

func TestUpdateMedicine_RejectedDecrementKeepsDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)

	extra := 20
	svc := NewMedicineService(staleMedicineRepo{MedicineRepository: env.medicineRepo, extra: &extra}, env.stock)

	name := "Paracetamol 650"
	price := 15.0
	qty := 0
	_, err := svc.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{Name: &name, Price: &price, Quantity: &qty})
	assertAppError(t, err, http.StatusBadRequest)

	got, err := env.medicines.GetMedicine(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", got.Name)
	assert.Equal(t, int64(1000), got.Price)
	assert.Equal(t, 5, got.Quantity)
}

// failingDetailsRepo rejects every detail update.
type failingDetailsRepo struct {
	repository.MedicineRepository
}

func (failingDetailsRepo) UpdateDetails(context.Context, *entity.Medicine) error {
	return errors.New("connection reset")
}

func TestUpdateMedicine_DetailFailureRevertsStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Paracetamol", "PARA-1", 5, 10)

	svc := NewMedicineService(failingDetailsRepo{env.medicineRepo}, env.stock)
	qty := 12
	_, err := svc.UpdateMedicine(ctx, m.ID, &UpdateMedicineInput{Quantity: &qty})
	require.Error(t, err)

	assert.Equal(t, 5, env.quantity(t, m.ID))

	movements, _, err := env.stock.ListMovements(ctx, m.ID, nil)
	require.NoError(t, err)
	var deltas []int
	for _, mv := range movements {
		deltas = append(deltas, mv.QuantityDelta)
	}
	assert.ElementsMatch(t, []int{5, 7, -7}, deltas)
}
