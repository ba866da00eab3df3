package repository

import (
	"context"

	"foodorder/internal/domain/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer model.Customer) (int64, error)
	FindByID(ctx context.Context, customerID int64) (model.Customer, error)
	FindByEmail(ctx context.Context, email string) (model.Customer, error)
}
