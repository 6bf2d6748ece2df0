package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID                int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU               string         `gorm:"type:varchar(8);uniqueIndex;not null" json:"sku"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	Description       string         `gorm:"type:text" json:"description"`
	Category          string         `gorm:"type:varchar(50);index" json:"category"`
	Price             int64          `gorm:"not null" json:"price"` // 最小通貨単位（centなど）
	Currency          string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Stock             int64          `gorm:"not null" json:"stock"`
	LowStockThreshold int64          `gorm:"not null;default:10" json:"low_stock_threshold"`
	IsActive          bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// 在庫が閾値以下かどうか。
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
