package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
)

// ============================================================================
// Тесты для UserService
// ============================================================================

func TestUserService_SetBalance_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{ID: 1, Email: "user@example.com", Balance: 10}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*entity.User")).Return(nil)

	userService := &UserService{userRepo: mockUserRepo}

	// Act
	updated, err := userService.SetBalance("user@example.com", 100)

	// Assert: баланс перезаписывается, а не суммируется
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Balance)
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_SetBalance_Negative(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	userService := &UserService{userRepo: mockUserRepo}

	// Act
	_, err := userService.SetBalance("user@example.com", -1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "GetByEmail")
}

func TestUserService_AddBalance_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	user := &entity.User{ID: 1, Email: "user@example.com", Balance: 10}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*entity.User")).Return(nil)

	userService := &UserService{userRepo: mockUserRepo}

	// Act
	updated, err := userService.AddBalance("user@example.com", 25)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 35.0, updated.Balance, "Пополнение должно прибавляться к текущему балансу")
	mockUserRepo.AssertExpectations(t)
}

func TestUserService_AddBalance_NonPositive(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	userService := &UserService{userRepo: mockUserRepo}

	// Act & Assert
	_, err := userService.AddBalance("user@example.com", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = userService.AddBalance("user@example.com", -5)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_AddBalance_UserNotFound(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	userService := &UserService{userRepo: mockUserRepo}

	// Act
	_, err := userService.AddBalance("ghost@example.com", 25)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_ListWithOrders(t *testing.T) {
	// Arrange: пользователь с истекшим заказом — OTP в представлении скрыт
	mockUserRepo := new(MockUserRepository)

	past := time.Now().Add(-24 * time.Hour)
	users := []entity.User{
		{
			ID:         1,
			Email:      "user@example.com",
			Role:       "user",
			Balance:    42,
			IsVerified: true,
			Orders: []entity.Order{
				{ID: 10, UserID: 1, ProductName: "Netflix", OTPInfo: "JBSWY3DPEHPK3PXP", ExpiresAt: &past},
			},
		},
	}
	mockUserRepo.On("ListWithOrders").Return(users, nil)

	userService := &UserService{userRepo: mockUserRepo}

	// Act
	views, err := userService.ListWithOrders()

	// Assert
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "user@example.com", views[0].Email)
	assert.Equal(t, 42.0, views[0].Balance)
	require.Len(t, views[0].Orders, 1)
	assert.True(t, views[0].Orders[0].Expired)
	assert.Empty(t, views[0].Orders[0].OTPInfo, "OTP истекшего заказа скрывается и в админ-представлении")
	mockUserRepo.AssertExpectations(t)
}
