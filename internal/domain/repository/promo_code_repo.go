package repository

import (
	"github.com/yourusername/rent-api/internal/domain/entity"
)

// PromoCodeRepository определяет методы для работы с промокодами
type PromoCodeRepository interface {
	Create(code *entity.PromotionCode) error
	GetByID(id uint) (*entity.PromotionCode, error)
	GetByCode(code string) (*entity.PromotionCode, error)
	List() ([]entity.PromotionCode, error)
	Update(code *entity.PromotionCode) error
	// HasRedeemed проверяет, применял ли пользователь данный промокод ранее
	HasRedeemed(userID, codeID uint) (bool, error)
}
