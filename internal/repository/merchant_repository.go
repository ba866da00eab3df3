package repository

import (
	"context"

	"foodorder/internal/domain/model"
)

type MerchantRepository interface {
	Create(ctx context.Context, merchant model.Merchant) (int64, error)
	FindByID(ctx context.Context, merchantID int64) (model.Merchant, error)
	FindByEmail(ctx context.Context, email string) (model.Merchant, error)
	List(ctx context.Context, onlyAvailable bool) ([]model.Merchant, error)
}
