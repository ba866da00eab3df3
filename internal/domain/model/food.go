package model

import "time"

// マーチャントが出品する商品。Priceは注文時の正価（最小通貨単位）。
type Food struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantID int64     `gorm:"not null;index" json:"merchant_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Price      int64     `gorm:"not null" json:"price"`
	Type       string    `gorm:"type:varchar(50)" json:"type"`
	Image      string    `gorm:"type:varchar(255)" json:"image"`
	Status     bool      `gorm:"not null;default:true" json:"status"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
