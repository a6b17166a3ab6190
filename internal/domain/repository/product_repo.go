package repository

import (
	"time"

	"github.com/yourusername/rent-api/internal/domain/entity"
)

// ProductRepository определяет методы для работы с каталогом товаров
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id uint) (*entity.Product, error)
	// GetActiveByID возвращает товар, если он не помечен как удаленный
	GetActiveByID(id uint) (*entity.Product, error)
	ListActive() ([]entity.Product, error)
	ListAll() ([]entity.Product, error)
	Update(product *entity.Product) error
	// CountActiveRentals возвращает количество неистекших заказов на товар
	CountActiveRentals(productID uint, now time.Time) (int64, error)
	// PurgeDeletedBefore физически удаляет товары, мягко удаленные до cutoff,
	// вместе с их заказами. Возвращает число удаленных товаров.
	PurgeDeletedBefore(cutoff time.Time) (int64, error)
}
