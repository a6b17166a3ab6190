package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/config"
	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// PromoService отвечает за промокоды: создание, деактивацию и применение.
// Политика применения настраивается: "global" (код гаснет после первого
// применения) или "per_user" (код одноразовый для каждого пользователя).
type PromoService struct {
	promoRepo repository.PromoCodeRepository
	codeScope string
	db        *gorm.DB
}

// NewPromoService создает новый сервис промокодов
func NewPromoService(promoRepo repository.PromoCodeRepository, codeScope string, db *gorm.DB) (*PromoService, error) {
	if promoRepo == nil {
		return nil, fmt.Errorf("promo code repository is required")
	}
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if codeScope == "" {
		codeScope = config.PromoScopeGlobal
	}
	if codeScope != config.PromoScopePerUser && codeScope != config.PromoScopeGlobal {
		return nil, fmt.Errorf("unknown promo code scope %q", codeScope)
	}
	return &PromoService{
		promoRepo: promoRepo,
		codeScope: codeScope,
		db:        db,
	}, nil
}

// Create создает промокод. Пустая строка кода означает автогенерацию.
func (s *PromoService) Create(code string, amount float64) (*entity.PromotionCode, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		code = generatePromoCode()
	}

	if _, err := s.promoRepo.GetByCode(code); err == nil {
		return nil, fmt.Errorf("%w: promotion code %q already exists", apperrors.ErrValidation, code)
	} else if err != apperrors.ErrNotFound {
		return nil, err
	}

	promo := &entity.PromotionCode{
		Code:     code,
		Amount:   amount,
		IsActive: true,
	}
	if err := s.promoRepo.Create(promo); err != nil {
		return nil, fmt.Errorf("%w: failed to create promotion code: %v", apperrors.ErrValidation, err)
	}
	log.Printf("[PromoService] Промокод %q создан, номинал %.2f", promo.Code, promo.Amount)
	return promo, nil
}

// List возвращает все промокоды
func (s *PromoService) List() ([]entity.PromotionCode, error) {
	return s.promoRepo.List()
}

// Deactivate гасит промокод
func (s *PromoService) Deactivate(id uint) (*entity.PromotionCode, error) {
	promo, err := s.promoRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !promo.IsActive {
		return nil, fmt.Errorf("%w: code is already inactive", apperrors.ErrValidation)
	}
	promo.IsActive = false
	if err := s.promoRepo.Update(promo); err != nil {
		return nil, fmt.Errorf("failed to deactivate promotion code: %w", err)
	}
	return promo, nil
}

// Redeem применяет промокод: атомарно зачисляет номинал на баланс, записывает
// факт применения и — при глобальной политике — деактивирует код для всех.
func (s *PromoService) Redeem(userID uint, code string) (float64, error) {
	promo, err := s.promoRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return 0, err
	}
	if !promo.IsActive {
		return 0, ErrPromoCodeInactive
	}

	redeemed, err := s.promoRepo.HasRedeemed(userID, promo.ID)
	if err != nil {
		return 0, err
	}
	if redeemed {
		return 0, ErrPromoCodeRedeemed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var user entity.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&entity.User{}).
			Where("id = ?", userID).
			UpdateColumn("balance", gorm.Expr("balance + ?", promo.Amount)).Error; err != nil {
			return fmt.Errorf("failed to credit balance: %w", err)
		}

		// Уникальный индекс join-таблицы отсекает конкурентный повтор того же кода
		if err := tx.Exec(
			"INSERT INTO user_promotion_codes (user_id, promotion_code_id) VALUES (?, ?)",
			userID, promo.ID,
		).Error; err != nil {
			return fmt.Errorf("%w: code already redeemed", apperrors.ErrConflict)
		}

		if s.codeScope == config.PromoScopeGlobal {
			if err := tx.Model(&entity.PromotionCode{}).
				Where("id = ?", promo.ID).
				UpdateColumn("is_active", false).Error; err != nil {
				return fmt.Errorf("failed to deactivate code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[PromoService] Пользователь ID=%d применил промокод %q (+%.2f)", userID, promo.Code, promo.Amount)
	return promo.Amount, nil
}

// generatePromoCode возвращает короткий код из UUID: 8 hex-символов в верхнем регистре
func generatePromoCode() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
