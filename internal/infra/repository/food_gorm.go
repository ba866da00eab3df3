package repository

import (
	"context"
	"errors"

	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"

	"gorm.io/gorm"
)

type FoodGormRepository struct {
	db *gorm.DB
}

func NewFoodGormRepository(db *gorm.DB) *FoodGormRepository {
	return &FoodGormRepository{db: db}
}

func (r *FoodGormRepository) FindByID(ctx context.Context, foodID int64) (model.Food, error) {
	var f model.Food
	err := r.db.WithContext(ctx).Where("id = ?", foodID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Food{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Food{}, err
	}
	return f, nil
}

func (r *FoodGormRepository) FindByIDs(ctx context.Context, foodIDs []int64) ([]model.Food, error) {
	if len(foodIDs) == 0 {
		return []model.Food{}, nil
	}

	var foods []model.Food
	err := r.db.WithContext(ctx).
		Where("id IN ?", foodIDs).
		Find(&foods).Error
	if err != nil {
		return []model.Food{}, err
	}
	return foods, nil
}

func (r *FoodGormRepository) ListByMerchantID(ctx context.Context, merchantID int64, onlyAvailable bool) ([]model.Food, error) {
	q := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID)
	if onlyAvailable {
		q = q.Where("status = ?", true)
	}

	var foods []model.Food
	if err := q.Order("id asc").Find(&foods).Error; err != nil {
		return []model.Food{}, err
	}
	return foods, nil
}

func (r *FoodGormRepository) Create(ctx context.Context, food model.Food) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&food).Error; err != nil {
		return 0, err
	}
	return food.ID, nil
}

func (r *FoodGormRepository) Update(ctx context.Context, food model.Food) error {
	res := r.db.WithContext(ctx).Model(&model.Food{}).
		Where("id = ?", food.ID).
		Updates(map[string]interface{}{
			"name":   food.Name,
			"price":  food.Price,
			"type":   food.Type,
			"image":  food.Image,
			"status": food.Status,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FoodGormRepository) Delete(ctx context.Context, foodID int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", foodID).Delete(&model.Food{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
