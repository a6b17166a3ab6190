package entity

import "time"

// Order представляет аренду: денормализованный снимок товара на момент покупки.
// Учетные данные копируются в заказ, чтобы последующее редактирование или
// удаление товара не меняло историю покупок.
type Order struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"user_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`

	ProductName  string  `gorm:"size:255;not null" json:"product_name"`
	Price        float64 `gorm:"not null" json:"price"`
	AccountInfo  string  `gorm:"type:text;not null" json:"account_info"`
	PasswordInfo string  `gorm:"size:255;not null" json:"password_info"`
	OTPInfo      string  `gorm:"size:255;not null;default:''" json:"otp_info,omitempty"`

	PurchaseTime time.Time  `gorm:"not null" json:"purchase_time"`
	ExpiresAt    *time.Time `gorm:"type:timestamp;index" json:"expires_at,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// IsExpired возвращает true, если срок аренды истек.
// Заказы без вычисленного срока (legacy-строки) считаются истекшими.
func (o *Order) IsExpired(now time.Time) bool {
	return o.ExpiresAt == nil || now.After(*o.ExpiresAt)
}
