package repository

import (
	"github.com/yourusername/rent-api/internal/domain/entity"
)

// OrderRepository определяет методы для работы с заказами
type OrderRepository interface {
	GetByID(id uint) (*entity.Order, error)
	// GetByIDForUser возвращает заказ только если он принадлежит пользователю
	GetByIDForUser(id, userID uint) (*entity.Order, error)
	ListByUser(userID uint) ([]entity.Order, error)
	ListAll() ([]entity.Order, error)
	Update(order *entity.Order) error
	Delete(id uint) error
}
