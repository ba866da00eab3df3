package model

import "time"

// Statusがtrueのマーチャントだけ注文を受け付ける
type Merchant struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MerchantName string    `gorm:"type:varchar(255);not null" json:"merchant_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	OwnerName    string    `gorm:"type:varchar(255)" json:"owner_name"`
	Phone        string    `gorm:"type:varchar(50)" json:"phone"`
	Image        string    `gorm:"type:varchar(255)" json:"image"`
	Status       bool      `gorm:"not null;default:true" json:"status"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
