package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rent-api/internal/service"
)

// AdminHandler обрабатывает административные запросы:
// пользователи, балансы, промокоды
type AdminHandler struct {
	userService  *service.UserService
	promoService *service.PromoService
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(userService *service.UserService, promoService *service.PromoService) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		promoService: promoService,
	}
}

// UserBalanceRequest представляет запрос на изменение баланса пользователя
type UserBalanceRequest struct {
	Email  string  `json:"email" binding:"required,email"`
	Amount float64 `json:"amount"`
}

// CreatePromoCodeRequest представляет запрос на создание промокода.
// Пустой код означает автогенерацию.
type CreatePromoCodeRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount" binding:"required"`
}

// ListUsers возвращает всех пользователей с балансами и историей заказов
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListWithOrders()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// SetBalance устанавливает баланс пользователя в точное значение
func (h *AdminHandler) SetBalance(c *gin.Context) {
	var req UserBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.SetBalance(req.Email, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Balance updated",
		"email":   user.Email,
		"balance": user.Balance,
	})
}

// AddBalance увеличивает баланс пользователя
func (h *AdminHandler) AddBalance(c *gin.Context) {
	var req UserBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.AddBalance(req.Email, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Balance updated",
		"email":   user.Email,
		"balance": user.Balance,
	})
}

// CreatePromoCode создает новый промокод
func (h *AdminHandler) CreatePromoCode(c *gin.Context) {
	var req CreatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	promo, err := h.promoService.Create(req.Code, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promo)
}

// ListPromoCodes возвращает все промокоды
func (h *AdminHandler) ListPromoCodes(c *gin.Context) {
	codes, err := h.promoService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

// DeactivatePromoCode гасит промокод
func (h *AdminHandler) DeactivatePromoCode(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid promo code id"})
		return
	}

	promo, err := h.promoService.Deactivate(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Promotion code deactivated", "code": promo.Code})
}
