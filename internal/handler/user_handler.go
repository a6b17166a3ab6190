package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rent-api/internal/middleware"
	"github.com/yourusername/rent-api/internal/service"
)

// UserHandler обрабатывает пользовательские операции с балансом
type UserHandler struct {
	promoService *service.PromoService
}

// NewUserHandler создает новый обработчик пользователя
func NewUserHandler(promoService *service.PromoService) *UserHandler {
	return &UserHandler{promoService: promoService}
}

// RedeemCodeRequest представляет запрос на применение промокода
type RedeemCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemCode применяет промокод к балансу текущего пользователя
func (h *UserHandler) RedeemCode(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req RedeemCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := h.promoService.Redeem(userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Promotion code redeemed successfully",
		"amount":  amount,
	})
}
