package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestock_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Cetirizine", "CTZ-01", 5, 3)

	_, err := env.stock.Restock(ctx, m.ID, &RestockInput{Quantity: 0})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "quantity", appErr.Errors[0].Field)

	_, err = env.stock.Restock(ctx, uuid.New(), &RestockInput{Quantity: 3})
	assertAppError(t, err, http.StatusNotFound)

	assert.Equal(t, 5, env.quantity(t, m.ID))
}

func TestListMovements_SurvivesDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m := env.addMedicine(t, "Ibuprofen", "IBU-01", 8, 4)

	require.NoError(t, env.medicines.DeleteMedicine(ctx, m.ID))

	movements, total, err := env.stock.ListMovements(ctx, m.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, movements, 1)
}
