package repository

import (
	"context"
	"errors"

	"foodorder/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type FoodRepository interface {
	FindByID(ctx context.Context, foodID int64) (model.Food, error)

	//注文分割用の一括取得（渡したidのうち存在するものだけ返る）
	FindByIDs(ctx context.Context, foodIDs []int64) ([]model.Food, error)

	ListByMerchantID(ctx context.Context, merchantID int64, onlyAvailable bool) ([]model.Food, error)
	Create(ctx context.Context, food model.Food) (int64, error)
	Update(ctx context.Context, food model.Food) error
	Delete(ctx context.Context, foodID int64) error
}
