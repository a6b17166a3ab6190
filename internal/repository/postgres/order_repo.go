package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// OrderRepo реализует repository.OrderRepository
type OrderRepo struct {
	db *gorm.DB
}

// NewOrderRepo создает новый репозиторий заказов
func NewOrderRepo(db *gorm.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// GetByID возвращает заказ по ID
func (r *OrderRepo) GetByID(id uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUser возвращает заказ только если он принадлежит пользователю
func (r *OrderRepo) GetByIDForUser(id, userID uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser возвращает заказы пользователя, новые первыми
func (r *OrderRepo) ListByUser(userID uint) ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.Where("user_id = ?", userID).Order("purchase_time DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll возвращает все заказы, новые первыми
func (r *OrderRepo) ListAll() ([]entity.Order, error) {
	var orders []entity.Order
	err := r.db.Order("purchase_time DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Update сохраняет изменения заказа
func (r *OrderRepo) Update(order *entity.Order) error {
	return r.db.Save(order).Error
}

// Delete безвозвратно удаляет заказ
func (r *OrderRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Order{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
