package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// ProductListing представляет товар в публичном каталоге.
// Учетные данные сюда не попадают.
type ProductListing struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Duration string  `json:"duration"`
	IsRented bool    `json:"is_rented"`
}

// ProductPatch описывает частичное обновление товара:
// непустые (non-nil) поля перезаписывают значение, отсутствующие не трогают.
type ProductPatch struct {
	Name         *string  `json:"name"`
	Price        *float64 `json:"price"`
	Quantity     *int     `json:"quantity"`
	Duration     *string  `json:"duration"`
	AccountInfo  *string  `json:"account_info"`
	PasswordInfo *string  `json:"password_info"`
	OTPSecret    *string  `json:"otp_secret"`
}

// ProductService отвечает за каталог товаров: создание, частичное обновление,
// мягкое удаление со стиранием учетных данных и отложенную физическую очистку.
type ProductService struct {
	productRepo    repository.ProductRepository
	purgeRetention time.Duration
}

// NewProductService создает новый сервис каталога
func NewProductService(productRepo repository.ProductRepository, purgeRetention time.Duration) (*ProductService, error) {
	if productRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if purgeRetention <= 0 {
		purgeRetention = 10 * time.Minute
	}
	return &ProductService{
		productRepo:    productRepo,
		purgeRetention: purgeRetention,
	}, nil
}

// ListPublic возвращает публичный каталог: только не удаленные товары,
// с признаком is_rented (есть хотя бы один неистекший заказ).
// Перед выдачей выполняется очистка просроченных мягко удаленных строк —
// побочный эффект на пути чтения, допустимый потому, что очистка идемпотентна
// и ее ошибка не мешает ответу.
func (s *ProductService) ListPublic() ([]ProductListing, error) {
	now := time.Now()
	if _, err := s.productRepo.PurgeDeletedBefore(now.Add(-s.purgeRetention)); err != nil {
		log.Printf("[ProductService] Ошибка очистки удаленных товаров: %v", err)
	}

	products, err := s.productRepo.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	listings := make([]ProductListing, 0, len(products))
	for _, p := range products {
		activeRentals, err := s.productRepo.CountActiveRentals(p.ID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to count rentals for product %d: %w", p.ID, err)
		}
		listings = append(listings, ProductListing{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			Duration: p.Duration,
			IsRented: activeRentals > 0,
		})
	}
	return listings, nil
}

// ListAdmin возвращает все товары, включая мягко удаленные, со всеми полями
func (s *ProductService) ListAdmin() ([]entity.Product, error) {
	return s.productRepo.ListAll()
}

// Get возвращает товар по ID
func (s *ProductService) Get(id uint) (*entity.Product, error) {
	return s.productRepo.GetByID(id)
}

// Create добавляет товар в каталог
func (s *ProductService) Create(product *entity.Product) error {
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", apperrors.ErrValidation)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", apperrors.ErrValidation)
	}
	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", apperrors.ErrValidation)
	}
	if len(product.Name) > 255 {
		product.Name = product.Name[:255]
	}
	if len(product.Duration) > 50 {
		product.Duration = product.Duration[:50]
	}

	if err := s.productRepo.Create(product); err != nil {
		// Нарушения ограничений БД не должны уходить наружу как сырые ошибки store
		return fmt.Errorf("%w: failed to add product: %v", apperrors.ErrValidation, err)
	}
	log.Printf("[ProductService] Товар ID=%d (%s) добавлен в каталог", product.ID, product.Name)
	return nil
}

// Update применяет частичное обновление товара
func (s *ProductService) Update(id uint, patch ProductPatch) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", apperrors.ErrValidation)
		}
		product.Price = *patch.Price
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", apperrors.ErrValidation)
		}
		product.Quantity = *patch.Quantity
	}
	if patch.Duration != nil {
		product.Duration = *patch.Duration
	}
	if patch.AccountInfo != nil {
		product.AccountInfo = *patch.AccountInfo
	}
	if patch.PasswordInfo != nil {
		product.PasswordInfo = *patch.PasswordInfo
	}
	if patch.OTPSecret != nil {
		product.OTPSecret = *patch.OTPSecret
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// SoftDelete немедленно стирает учетные данные товара и помечает его удаленным.
// Строка будет физически удалена очисткой после окна хранения; уже созданные
// заказы хранят собственные денормализованные копии и не затрагиваются.
func (s *ProductService) SoftDelete(id uint) error {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return err
	}

	product.Scrub(time.Now())
	if err := s.productRepo.Update(product); err != nil {
		return fmt.Errorf("failed to soft delete product: %w", err)
	}
	log.Printf("[ProductService] Товар ID=%d мягко удален, учетные данные стерты", id)
	return nil
}
