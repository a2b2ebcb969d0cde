package inventory

import (
	"context"
	"time"

	"github.com/invorya/stocksync-api/internal/application/dto"
	"github.com/invorya/stocksync-api/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso
// RegisterMovement(ctx, MovementInputDTO). Usar desde handlers HTTP que ya
// tienen companyID y userID del token.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (*entity.InventoryMovement, error) {
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	input := MovementInputDTO{
		CompanyID:       companyID,
		UserID:          userID,
		Type:            in.Type,
		Date:            date,
		FromWarehouseID: in.WarehouseFromID,
		ToWarehouseID:   in.WarehouseToID,
		Reference:       in.Reference,
		Notes:           in.Notes,
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, MovementItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
			UnitPrice: it.UnitPrice,
			Notes:     it.Notes,
		})
	}
	return uc.RegisterMovement(ctx, input)
}
