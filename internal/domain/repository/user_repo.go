package repository

import (
	"github.com/yourusername/rent-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
	// UpdateProfile обновляет только указанные поля, не затрагивая пароль
	UpdateProfile(userID uint, updates map[string]interface{}) error
	UpdatePassword(userID uint, newPassword string) error
	// ListWithOrders возвращает всех пользователей с историей заказов (для админ-панели)
	ListWithOrders() ([]entity.User, error)
}
