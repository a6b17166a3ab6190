package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// AdminUserView представляет пользователя в админ-панели вместе с историей заказов
type AdminUserView struct {
	ID         uint        `json:"id"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	Balance    float64     `json:"balance"`
	IsVerified bool        `json:"is_verified"`
	CreatedAt  time.Time   `json:"created_at"`
	Orders     []OrderView `json:"orders"`
}

// UserService отвечает за административные операции над пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) (*UserService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &UserService{userRepo: userRepo}, nil
}

// ListWithOrders возвращает всех пользователей с балансами и историей заказов
func (s *UserService) ListWithOrders() ([]AdminUserView, error) {
	users, err := s.userRepo.ListWithOrders()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	now := time.Now()
	views := make([]AdminUserView, 0, len(users))
	for i := range users {
		u := &users[i]
		orders := make([]OrderView, 0, len(u.Orders))
		for j := range u.Orders {
			orders = append(orders, newOrderView(&u.Orders[j], now, ""))
		}
		views = append(views, AdminUserView{
			ID:         u.ID,
			Email:      u.Email,
			Role:       u.Role,
			Balance:    u.Balance,
			IsVerified: u.IsVerified,
			CreatedAt:  u.CreatedAt,
			Orders:     orders,
		})
	}
	return views, nil
}

// SetBalance устанавливает баланс пользователя в точное значение
func (s *UserService) SetBalance(email string, amount float64) (*entity.User, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: balance cannot be negative", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	user.Balance = amount
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}
	log.Printf("[UserService] Баланс пользователя %s установлен в %.2f", email, amount)
	return user, nil
}

// AddBalance увеличивает баланс пользователя на положительную сумму
func (s *UserService) AddBalance(email string, amount float64) (*entity.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	user.Balance += amount
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to add balance: %w", err)
	}
	log.Printf("[UserService] Баланс пользователя %s пополнен на %.2f (итого %.2f)", email, amount, user.Balance)
	return user, nil
}
