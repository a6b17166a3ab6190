package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// PromoCodeRepo реализует repository.PromoCodeRepository
type PromoCodeRepo struct {
	db *gorm.DB
}

// NewPromoCodeRepo создает новый репозиторий промокодов
func NewPromoCodeRepo(db *gorm.DB) *PromoCodeRepo {
	return &PromoCodeRepo{db: db}
}

// Create создает новый промокод
func (r *PromoCodeRepo) Create(code *entity.PromotionCode) error {
	return r.db.Create(code).Error
}

// GetByID возвращает промокод по ID
func (r *PromoCodeRepo) GetByID(id uint) (*entity.PromotionCode, error) {
	var code entity.PromotionCode
	err := r.db.First(&code, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// GetByCode возвращает промокод по его строковому значению
func (r *PromoCodeRepo) GetByCode(value string) (*entity.PromotionCode, error) {
	var code entity.PromotionCode
	err := r.db.Where("code = ?", value).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// List возвращает все промокоды, новые первыми
func (r *PromoCodeRepo) List() ([]entity.PromotionCode, error) {
	var codes []entity.PromotionCode
	if err := r.db.Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Update сохраняет изменения промокода
func (r *PromoCodeRepo) Update(code *entity.PromotionCode) error {
	return r.db.Save(code).Error
}

// HasRedeemed проверяет, применял ли пользователь данный промокод ранее
func (r *PromoCodeRepo) HasRedeemed(userID, codeID uint) (bool, error) {
	var count int64
	err := r.db.Table("user_promotion_codes").
		Where("user_id = ? AND promotion_code_id = ?", userID, codeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
