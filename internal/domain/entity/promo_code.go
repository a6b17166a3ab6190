package entity

import "time"

// PromotionCode представляет промокод пополнения баланса
type PromotionCode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Amount    float64   `gorm:"not null" json:"amount"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (PromotionCode) TableName() string {
	return "promotion_codes"
}
