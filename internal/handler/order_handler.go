package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/rent-api/internal/middleware"
	"github.com/yourusername/rent-api/internal/service"
)

// OrderHandler обрабатывает запросы жизненного цикла аренды
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// AssignOrderRequest представляет запрос на административную выдачу товара
type AssignOrderRequest struct {
	Email     string `json:"email" binding:"required,email"`
	ProductID uint   `json:"product_id" binding:"required"`
}

// UpdateOrderRequest представляет запрос на переопределение срока заказа
type UpdateOrderRequest struct {
	ExpiresAt time.Time `json:"expires_at" binding:"required"`
}

// Buy покупает товар для текущего пользователя
func (h *OrderHandler) Buy(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := parseUintParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	order, err := h.orderService.Purchase(userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Product purchased successfully",
		"order_id":   order.ID,
		"expires_at": order.ExpiresAt,
	})
}

// Renew продлевает аренду текущего пользователя
func (h *OrderHandler) Renew(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := parseUintParam(c, "order_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orderService.Renew(userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order renewed successfully",
		"order_id":   order.ID,
		"expires_at": order.ExpiresAt,
	})
}

// History возвращает заказы текущего пользователя
func (h *OrderHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := h.orderService.History(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// ListAll возвращает все заказы с email владельцев (админ)
func (h *OrderHandler) ListAll(c *gin.Context) {
	orders, err := h.orderService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Assign выдает товар пользователю бесплатно (админ)
func (h *OrderHandler) Assign(c *gin.Context) {
	var req AssignOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.Assign(req.Email, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Product assigned successfully",
		"order_id":   order.ID,
		"expires_at": order.ExpiresAt,
	})
}

// Revoke безусловно удаляет заказ (админ)
func (h *OrderHandler) Revoke(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	if err := h.orderService.Revoke(orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order revoked"})
}

// Update переопределяет срок действия заказа (админ)
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orderService.UpdateExpiry(orderID, req.ExpiresAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Order updated",
		"order_id":   order.ID,
		"expires_at": order.ExpiresAt,
	})
}
