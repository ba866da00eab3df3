package usecase

import (
	"context"
	"fmt"

	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"
)

type MerchantUsecase struct {
	merchants repo.MerchantRepository
}

func NewMerchantUsecase(merchants repo.MerchantRepository) *MerchantUsecase {
	return &MerchantUsecase{merchants: merchants}
}

func (u *MerchantUsecase) List(ctx context.Context, onlyAvailable bool) ([]model.Merchant, error) {
	merchants, err := u.merchants.List(ctx, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return merchants, nil
}

func (u *MerchantUsecase) Get(ctx context.Context, merchantID int64) (model.Merchant, error) {
	if merchantID <= 0 {
		return model.Merchant{}, ErrInvalidInput
	}
	return u.merchants.FindByID(ctx, merchantID)
}
