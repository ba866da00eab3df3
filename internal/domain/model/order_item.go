package model

import "time"

// 注文の明細。作成後は不変。
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64     `gorm:"not null;index" json:"order_id"`
	FoodID    int64     `gorm:"not null;index" json:"food_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`

	// 表示用（food名のjoin）
	Food Food `gorm:"foreignKey:FoodID;references:ID" json:"food"`
}
