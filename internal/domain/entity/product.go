package entity

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultDurationDays используется, когда из поля duration не удается извлечь число дней.
const DefaultDurationDays = 30

// Product представляет товар каталога — арендуемый аккаунт с учетными данными
type Product struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:255;not null" json:"name"`
	Price    float64 `gorm:"not null" json:"price"`
	Quantity int     `gorm:"not null;default:0" json:"quantity"`
	Duration string  `gorm:"size:50;not null" json:"duration"` // свободный текст, например "30 Ngày"

	AccountInfo  string `gorm:"type:text;not null" json:"account_info,omitempty"`
	PasswordInfo string `gorm:"size:255;not null" json:"password_info,omitempty"`
	OTPSecret    string `gorm:"size:255;not null;default:''" json:"otp_secret,omitempty"`

	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"type:timestamp" json:"deleted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// DurationDays извлекает количество дней аренды из текстового поля Duration.
// Берется первая непрерывная последовательность десятичных цифр;
// если цифр нет — возвращается значение по умолчанию (30 дней).
// Ошибки не возвращаются: поле заполняется администраторами в свободной форме.
func (p *Product) DurationDays() int {
	return ParseDurationDays(p.Duration)
}

// ParseDurationDays — см. Product.DurationDays
func ParseDurationDays(duration string) int {
	var b strings.Builder
	for _, r := range duration {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		return DefaultDurationDays
	}
	days, err := strconv.Atoi(b.String())
	if err != nil || days <= 0 {
		return DefaultDurationDays
	}
	return days
}

// Scrub немедленно стирает учетные данные товара. Вызывается при мягком удалении,
// чтобы каталог перестал раскрывать секреты до физической очистки строки.
func (p *Product) Scrub(now time.Time) {
	p.AccountInfo = ""
	p.PasswordInfo = ""
	p.OTPSecret = ""
	p.IsDeleted = true
	p.DeletedAt = &now
}
