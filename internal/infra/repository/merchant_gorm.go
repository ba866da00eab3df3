package repository

import (
	"context"
	"errors"

	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"

	"gorm.io/gorm"
)

type MerchantGormRepository struct {
	db *gorm.DB
}

func NewMerchantGormRepository(db *gorm.DB) *MerchantGormRepository {
	return &MerchantGormRepository{db: db}
}

func (r *MerchantGormRepository) Create(ctx context.Context, merchant model.Merchant) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&merchant).Error; err != nil {
		return 0, err
	}
	return merchant.ID, nil
}

func (r *MerchantGormRepository) FindByID(ctx context.Context, merchantID int64) (model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", merchantID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Merchant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Merchant{}, err
	}
	return m, nil
}

func (r *MerchantGormRepository) FindByEmail(ctx context.Context, email string) (model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Merchant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Merchant{}, err
	}
	return m, nil
}

func (r *MerchantGormRepository) List(ctx context.Context, onlyAvailable bool) ([]model.Merchant, error) {
	q := r.db.WithContext(ctx)
	if onlyAvailable {
		q = q.Where("status = ?", true)
	}

	var merchants []model.Merchant
	if err := q.Order("id asc").Find(&merchants).Error; err != nil {
		return []model.Merchant{}, err
	}
	return merchants, nil
}
