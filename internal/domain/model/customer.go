package model

import "time"

type Customer struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserName     string    `gorm:"type:varchar(255);not null" json:"user_name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
