package service

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
)

// OrderView представляет заказ в ответе API. Учетные данные для истекших
// аренд скрываются на уровне этого представления.
type OrderView struct {
	ID           uint       `json:"id"`
	ProductID    uint       `json:"product_id"`
	ProductName  string     `json:"product_name"`
	Price        float64    `json:"price"`
	AccountInfo  string     `json:"account_info"`
	PasswordInfo string     `json:"password_info"`
	OTPInfo      string     `json:"otp_info,omitempty"`
	PurchaseTime time.Time  `json:"purchase_time"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Expired      bool       `json:"expired"`
	UserEmail    string     `json:"user_email,omitempty"` // только для админ-представления
}

// OrderService реализует жизненный цикл аренды: покупку, продление,
// административную выдачу и отзыв. Предусловия проверяются по порядку
// (первая ошибка выигрывает), а эффекты — списание баланса, уменьшение
// остатка, создание заказа — выполняются в одной транзакции БД
// с условными UPDATE, которые повторно проверяют инварианты.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	db          *gorm.DB
}

// NewOrderService создает новый сервис заказов
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) (*OrderService, error) {
	if orderRepo == nil || productRepo == nil || userRepo == nil {
		return nil, fmt.Errorf("order, product and user repositories are required")
	}
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		db:          db,
	}, nil
}

// Purchase покупает товар: списывает баланс, уменьшает остаток и создает заказ
// со снимком учетных данных. Предусловия: товар существует → есть остаток →
// хватает баланса.
func (s *OrderService) Purchase(userID, productID uint) (*entity.Order, error) {
	product, err := s.productRepo.GetActiveByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Quantity <= 0 {
		return nil, ErrOutOfStock
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Balance < product.Price {
		return nil, fmt.Errorf("%w: you need %.2f but only have %.2f", ErrInsufficientFunds, product.Price, user.Balance)
	}

	order := buildRentalOrder(user.ID, product, product.Price, time.Now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, product.ID); err != nil {
			return err
		}
		if err := debitBalance(tx, user.ID, product.Price); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[OrderService] Пользователь ID=%d купил товар ID=%d, заказ ID=%d, истекает %s",
		userID, productID, order.ID, order.ExpiresAt.Format(time.RFC3339))
	return order, nil
}

// Renew продлевает аренду. Списывается ТЕКУЩАЯ цена товара (она могла
// измениться с момента покупки), а новый срок отсчитывается от
// max(now, старый expires_at): продление до истечения складывает время,
// а не сбрасывает его.
func (s *OrderService) Renew(userID, orderID uint) (*entity.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(orderID, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetActiveByID(order.ProductID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Balance < product.Price {
		return nil, fmt.Errorf("%w: you need %.2f but only have %.2f", ErrInsufficientFunds, product.Price, user.Balance)
	}

	newExpiry := renewedExpiry(order, product, time.Now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := debitBalance(tx, user.ID, product.Price); err != nil {
			return err
		}
		if err := tx.Model(&entity.Order{}).
			Where("id = ?", order.ID).
			UpdateColumn("expires_at", newExpiry).Error; err != nil {
			return fmt.Errorf("failed to extend order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.ExpiresAt = &newExpiry
	log.Printf("[OrderService] Заказ ID=%d продлен до %s", order.ID, newExpiry.Format(time.RFC3339))
	return order, nil
}

// Assign выдает товар пользователю бесплатно (админ-операция).
// Баланс не проверяется, остаток — проверяется и уменьшается как при покупке.
func (s *OrderService) Assign(email string, productID uint) (*entity.Order, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetActiveByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Quantity <= 0 {
		return nil, ErrOutOfStock
	}

	order := buildRentalOrder(user.ID, product, 0, time.Now())
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, product.ID); err != nil {
			return err
		}
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[OrderService] Товар ID=%d выдан пользователю %s, заказ ID=%d", productID, email, order.ID)
	return order, nil
}

// Revoke безусловно удаляет заказ (админ-операция)
func (s *OrderService) Revoke(orderID uint) error {
	return s.orderRepo.Delete(orderID)
}

// UpdateExpiry переопределяет срок действия заказа (админ-операция)
func (s *OrderService) UpdateExpiry(orderID uint, expiresAt time.Time) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	order.ExpiresAt = &expiresAt
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order expiry: %w", err)
	}
	return order, nil
}

// History возвращает заказы пользователя, новые первыми
func (s *OrderService) History(userID uint) ([]OrderView, error) {
	orders, err := s.orderRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	now := time.Now()
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i], now, ""))
	}
	return views, nil
}

// ListAll возвращает все заказы с email владельцев (админ-представление)
func (s *OrderService) ListAll() ([]OrderView, error) {
	orders, err := s.orderRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	users, err := s.userRepo.ListWithOrders()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	emailByID := make(map[uint]string, len(users))
	for i := range users {
		emailByID[users[i].ID] = users[i].Email
	}

	now := time.Now()
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i], now, emailByID[orders[i].UserID]))
	}
	return views, nil
}

// buildRentalOrder строит заказ со снимком полей товара и вычисленным сроком.
// Цена передается отдельно: покупка фиксирует текущую цену, админ-выдача — ноль.
func buildRentalOrder(userID uint, product *entity.Product, price float64, now time.Time) *entity.Order {
	expiresAt := rentalExpiry(product, now)
	return &entity.Order{
		UserID:       userID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Price:        price,
		AccountInfo:  product.AccountInfo,
		PasswordInfo: product.PasswordInfo,
		OTPInfo:      product.OTPSecret,
		PurchaseTime: now,
		ExpiresAt:    &expiresAt,
	}
}

// rentalExpiry вычисляет срок новой аренды: now + срок товара в днях
func rentalExpiry(product *entity.Product, now time.Time) time.Time {
	return now.Add(time.Duration(product.DurationDays()) * 24 * time.Hour)
}

// renewedExpiry вычисляет срок после продления: отсчет от max(now, старый срок),
// чтобы оплаченное время не терялось
func renewedExpiry(order *entity.Order, product *entity.Product, now time.Time) time.Time {
	base := now
	if order.ExpiresAt != nil && order.ExpiresAt.After(now) {
		base = *order.ExpiresAt
	}
	return base.Add(time.Duration(product.DurationDays()) * 24 * time.Hour)
}

// newOrderView строит представление заказа; для истекших аренд OTP-секрет скрывается
func newOrderView(o *entity.Order, now time.Time, userEmail string) OrderView {
	view := OrderView{
		ID:           o.ID,
		ProductID:    o.ProductID,
		ProductName:  o.ProductName,
		Price:        o.Price,
		AccountInfo:  o.AccountInfo,
		PasswordInfo: o.PasswordInfo,
		OTPInfo:      o.OTPInfo,
		PurchaseTime: o.PurchaseTime,
		ExpiresAt:    o.ExpiresAt,
		Expired:      o.IsExpired(now),
		UserEmail:    userEmail,
	}
	if view.Expired {
		view.OTPInfo = ""
	}
	return view
}

// decrementStock уменьшает остаток товара на единицу, при условии что остаток
// положительный. RowsAffected=0 означает проигрыш конкурентной покупки
// последней единицы: транзакция откатывается целиком, oversell невозможен.
func decrementStock(tx *gorm.DB, productID uint) error {
	result := tx.Model(&entity.Product{}).
		Where("id = ? AND quantity > 0", productID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}

// debitBalance списывает сумму с баланса пользователя, при условии что средств
// достаточно: баланс не уходит в минус даже при конкурентных списаниях.
func debitBalance(tx *gorm.DB, userID uint, amount float64) error {
	if amount == 0 {
		return nil
	}
	result := tx.Model(&entity.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: balance changed concurrently", ErrInsufficientFunds)
	}
	return nil
}
