package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
	"github.com/yourusername/rent-api/internal/service"
)

// respondError отображает ошибки сервисного слоя на HTTP-статусы.
// Неопознанные ошибки логируются и отдаются как 500 без деталей.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInvalidVerificationCode),
		errors.Is(err, service.ErrVerificationExpired),
		errors.Is(err, service.ErrInvalidResetCode),
		errors.Is(err, service.ErrResetCodeExpired),
		errors.Is(err, service.ErrPromoCodeInactive),
		errors.Is(err, service.ErrPromoCodeRedeemed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("[Handler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
