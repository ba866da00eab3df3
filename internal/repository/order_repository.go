package repository

import (
	"context"

	"foodorder/internal/domain/model"
)

// 顧客向け一覧は直近30件まで
const CustomerOrderListLimit = 30

type OrderRepository interface {
	//明細込みで1トランザクション書き込み。作成済みのOrder（ID採番・明細join済み）を返す。
	CreateWithItems(ctx context.Context, order model.Order) (model.Order, error)

	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//ステータスを書いて、customer/明細join済みの最新を返す
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (model.Order, error)

	//どちらも作成日時の降順
	ListByMerchantID(ctx context.Context, merchantID int64) ([]model.Order, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error)
}
