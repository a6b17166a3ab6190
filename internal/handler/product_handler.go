package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/service"
)

// ProductHandler обрабатывает запросы каталога товаров
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler создает новый обработчик каталога
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// CreateProductRequest представляет запрос на добавление товара
type CreateProductRequest struct {
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"min=0"`
	Quantity  int     `json:"quantity" binding:"min=0"`
	Duration  string  `json:"duration" binding:"required"`
	Account   string  `json:"account" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	OTPSecret string  `json:"otp_secret"`
}

// ListPublic возвращает публичный каталог
func (h *ProductHandler) ListPublic(c *gin.Context) {
	listings, err := h.productService.ListPublic()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// ListAdmin возвращает все товары, включая мягко удаленные
func (h *ProductHandler) ListAdmin(c *gin.Context) {
	products, err := h.productService.ListAdmin()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get возвращает товар по ID
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.productService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create добавляет новый товар
func (h *ProductHandler) Create(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := &entity.Product{
		Name:         req.Name,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Duration:     req.Duration,
		AccountInfo:  req.Account,
		PasswordInfo: req.Password,
		OTPSecret:    req.OTPSecret,
	}
	if err := h.productService.Create(product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product added successfully", "id": product.ID})
}

// Update применяет частичное обновление товара
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var patch service.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.productService.Update(id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete мягко удаляет товар: учетные данные стираются немедленно,
// строка будет очищена физически после окна хранения
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.productService.SoftDelete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// CalcOTP вычисляет одноразовый код по переданному TOTP-секрету
// (стандартный 30-секундный шаг)
func (h *ProductHandler) CalcOTP(c *gin.Context) {
	secret := c.Query("secret")
	if secret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret query parameter is required"})
		return
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP secret"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"otp": code})
}

// parseUintParam извлекает числовой параметр пути
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
