package usecase

import (
	"context"
	"errors"
	"fmt"

	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"
)

// マーチャントが自分のメニューだけ触れる
var ErrForbidden = errors.New("forbidden")

type FoodUsecase struct {
	foods repo.FoodRepository
}

func NewFoodUsecase(foods repo.FoodRepository) *FoodUsecase {
	return &FoodUsecase{foods: foods}
}

type CreateFoodInput struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Type  string `json:"type"`
	Image string `json:"image"`
}

type UpdateFoodInput struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Type   string `json:"type"`
	Image  string `json:"image"`
	Status bool   `json:"status"`
}

func (u *FoodUsecase) Create(ctx context.Context, merchantID int64, in CreateFoodInput) (model.Food, error) {
	if merchantID <= 0 {
		return model.Food{}, ErrInvalidInput
	}
	if in.Name == "" || in.Price <= 0 {
		return model.Food{}, ErrInvalidInput
	}

	food := model.Food{
		MerchantID: merchantID,
		Name:       in.Name,
		Price:      in.Price,
		Type:       in.Type,
		Image:      in.Image,
		Status:     true,
	}

	id, err := u.foods.Create(ctx, food)
	if err != nil {
		return model.Food{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	food.ID = id
	return food, nil
}

func (u *FoodUsecase) Update(ctx context.Context, merchantID int64, foodID int64, in UpdateFoodInput) (model.Food, error) {
	if in.Name == "" || in.Price <= 0 {
		return model.Food{}, ErrInvalidInput
	}

	current, err := u.foods.FindByID(ctx, foodID)
	if err != nil {
		return model.Food{}, err
	}
	if current.MerchantID != merchantID {
		return model.Food{}, ErrForbidden
	}

	current.Name = in.Name
	current.Price = in.Price
	current.Type = in.Type
	current.Image = in.Image
	current.Status = in.Status

	if err := u.foods.Update(ctx, current); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Food{}, err
		}
		return model.Food{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return current, nil
}

func (u *FoodUsecase) Delete(ctx context.Context, merchantID int64, foodID int64) error {
	current, err := u.foods.FindByID(ctx, foodID)
	if err != nil {
		return err
	}
	if current.MerchantID != merchantID {
		return ErrForbidden
	}

	if err := u.foods.Delete(ctx, foodID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (u *FoodUsecase) Get(ctx context.Context, foodID int64) (model.Food, error) {
	return u.foods.FindByID(ctx, foodID)
}

func (u *FoodUsecase) ListByMerchant(ctx context.Context, merchantID int64, onlyAvailable bool) ([]model.Food, error) {
	foods, err := u.foods.ListByMerchantID(ctx, merchantID, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return foods, nil
}
