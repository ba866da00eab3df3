package model

import "time"

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "Pending"
	OrderStatusPreparing     OrderStatus = "Preparing"
	OrderStatusWaitForPickup OrderStatus = "Wait for Pickup"
	OrderStatusCompleted     OrderStatus = "Completed"
	OrderStatusCancelled     OrderStatus = "Cancelled"
)

// 既知のステータスか
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusWaitForPickup,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Completed/Cancelledは終端（以降の更新は受け付けない）
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// 1注文は必ず1マーチャントに属する
type Order struct {
	ID            int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID    int64       `gorm:"not null;index" json:"customer_id"`
	MerchantID    int64       `gorm:"not null;index" json:"merchant_id"`
	PaymentMethod string      `gorm:"type:varchar(50);not null" json:"payment_method"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalPrice    int64       `gorm:"not null" json:"total_price"`
	CreatedAt     time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}
