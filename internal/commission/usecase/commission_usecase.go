package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	commissionDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/commission/domain"
	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// commissionUseCase implements CommissionUseCase.
type commissionUseCase struct {
	commissionRepo CommissionRepository
	orderRepo      OrderReader
	rate           decimal.Decimal
}

// NewCommissionUseCase creates a CommissionUseCase applying rate to every vendor's gross sales.
// Repositories resolve their querier from the context, so a call made inside a transaction
// writes its entries in that transaction.
func NewCommissionUseCase(
	commissionRepo CommissionRepository,
	orderRepo OrderReader,
	rate decimal.Decimal,
) (CommissionUseCase, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, commissionDomain.ErrInvalidRate
	}
	return &commissionUseCase{
		commissionRepo: commissionRepo,
		orderRepo:      orderRepo,
		rate:           rate,
	}, nil
}

// PostForOrder computes and stores the per-vendor commission of a completed order.
func (c *commissionUseCase) PostForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	order, err := c.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if !order.IsCompleted() {
		return 0, apperrors.Wrapf(commissionDomain.ErrOrderNotSettled, "order %s", order.OrderNumber)
	}

	items, err := c.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return 0, err
	}

	entries, err := commissionDomain.Compute(orderID, items, c.rate)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, entry := range entries {
		ok, err := c.commissionRepo.Create(ctx, entry)
		if err != nil {
			return created, apperrors.Wrapf(err, "vendor %s", entry.VendorID)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// ListByOrder returns the entries posted for an order.
func (c *commissionUseCase) ListByOrder(
	ctx context.Context,
	orderID uuid.UUID,
) ([]*commissionDomain.Entry, error) {
	return c.commissionRepo.ListByOrder(ctx, orderID)
}
