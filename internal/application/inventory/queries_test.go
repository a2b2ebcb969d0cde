package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/stocksync-api/internal/application/inventory"
	"github.com/invorya/stocksync-api/internal/domain"
	"github.com/invorya/stocksync-api/internal/domain/entity"
)

func newQueryUseCase(store *fakeStore) *inventory.StockQueryUseCase {
	warehouses := &fakeWarehouseRepo{warehouses: map[string]*entity.Warehouse{
		whA: {ID: whA, CompanyID: testCompanyID, Name: "Bodega Central"},
		whB: {ID: whB, CompanyID: otherCompany, Name: "Bodega Ajena"},
	}}
	return inventory.NewStockQueryUseCase(
		&fakeStockRepo{store: store},
		&fakeMovementRepo{store: store},
		warehouses,
	)
}

func TestGetQuantity_FilaAusenteEsCero(t *testing.T) {
	uc := newQueryUseCase(newFakeStore())

	qty, err := uc.GetQuantity(context.Background(), testCompanyID, prodX, whA)
	require.NoError(t, err)
	assert.True(t, qty.IsZero(), "ausencia de fila significa stock cero, no error")
}

func TestGetQuantity_BodegaDeOtraEmpresa(t *testing.T) {
	uc := newQueryUseCase(newFakeStore())

	_, err := uc.GetQuantity(context.Background(), testCompanyID, prodX, whB)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListMovements_ExigeBodegaOProducto(t *testing.T) {
	uc := newQueryUseCase(newFakeStore())

	_, err := uc.ListMovements(context.Background(), testCompanyID, "", "", nil, nil, 20, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestGetMovement_VerificaPertenencia(t *testing.T) {
	store := newFakeStore()
	store.movements = append(store.movements, &entity.InventoryMovement{
		ID:        "mov-1",
		CompanyID: otherCompany,
		Type:      entity.MovementTypeIN,
	})
	uc := newQueryUseCase(store)

	_, err := uc.GetMovement(context.Background(), testCompanyID, "mov-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = uc.GetMovement(context.Background(), testCompanyID, "no-existe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	mov, err := uc.GetMovement(context.Background(), otherCompany, "mov-1")
	require.NoError(t, err)
	assert.Equal(t, "mov-1", mov.ID)
}
