package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/rent-api/internal/domain/entity"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
	"github.com/yourusername/rent-api/pkg/auth"
)

// ============================================================================
// Моки для тестирования AuthService
// ============================================================================

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(userID uint, updates map[string]interface{}) error {
	args := m.Called(userID, updates)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(userID uint, newPassword string) error {
	args := m.Called(userID, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) ListWithOrders() ([]entity.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

func (m *MockEmailService) SendResetCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	args := m.Called(ctx, toEmail, code, idempotencyKey)
	return args.Error(0)
}

// ============================================================================
// createTestAuthService создаёт AuthService для тестирования с моками
// ============================================================================

func createTestAuthService(userRepo *MockUserRepository, emailService *MockEmailService) *AuthService {
	jwtService, _ := auth.NewJWTService("test-secret", 1)
	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		emailService: emailService,
		codeTTL:      10 * time.Minute,
	}
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hashed)
}

// ============================================================================
// Тесты для AuthService
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	// Код подтверждения сохраняется и уходит письмом
	var sentCode string
	mockUserRepo.On("UpdateProfile", mock.AnythingOfType("uint"), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) {
			updates := args.Get(1).(map[string]interface{})
			sentCode = updates["verification_code"].(string)
		}).Return(nil)
	mockEmail.On("SendVerificationCode", mock.Anything, "new@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	reissued, err := authService.Register(context.Background(), "new@example.com", "password123")

	// Assert
	require.NoError(t, err, "Регистрация должна быть успешной")
	assert.False(t, reissued, "Новый пользователь — это не переотправка кода")
	assert.Len(t, sentCode, 6, "Код подтверждения должен состоять из 6 цифр")
	mockUserRepo.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestAuthService_Register_ReissuesCodeForUnverified(t *testing.T) {
	// Arrange: email занят, но пользователь еще не подтвердил его
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	existing := &entity.User{ID: 1, Email: "pending@example.com", IsVerified: false}
	mockUserRepo.On("GetByEmail", "pending@example.com").Return(existing, nil)
	mockUserRepo.On("UpdateProfile", uint(1), mock.AnythingOfType("map[string]interface {}")).Return(nil)
	mockEmail.On("SendVerificationCode", mock.Anything, "pending@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	reissued, err := authService.Register(context.Background(), "pending@example.com", "password123")

	// Assert: дубликат не создается, код переотправляется
	require.NoError(t, err)
	assert.True(t, reissued, "Для неподтвержденного пользователя код должен переотправляться")
	mockUserRepo.AssertNotCalled(t, "Create")
	mockUserRepo.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateVerifiedEmail(t *testing.T) {
	// Arrange: email занят подтвержденным пользователем
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	existing := &entity.User{ID: 1, Email: "taken@example.com", IsVerified: true}
	mockUserRepo.On("GetByEmail", "taken@example.com").Return(existing, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	_, err := authService.Register(context.Background(), "taken@example.com", "password123")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Занятый email должен давать ошибку валидации")
	mockUserRepo.AssertNotCalled(t, "Create")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	// Arrange: bcrypt молча обрезает пароли длиннее 72 байт, поэтому отклоняем явно
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)
	authService := createTestAuthService(mockUserRepo, mockEmail)

	longPassword := strings.Repeat("a", 73)

	// Act
	_, err := authService.Register(context.Background(), "new@example.com", longPassword)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "GetByEmail")
}

func TestAuthService_Register_EmailFailureNotFatal(t *testing.T) {
	// Arrange: письмо не отправилось, но регистрация должна пройти —
	// пользователь сможет запросить повторную отправку
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	mockUserRepo.On("GetByEmail", "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)
	mockUserRepo.On("UpdateProfile", mock.AnythingOfType("uint"), mock.AnythingOfType("map[string]interface {}")).Return(nil)
	mockEmail.On("SendVerificationCode", mock.Anything, "new@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(assert.AnError)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	_, err := authService.Register(context.Background(), "new@example.com", "password123")

	// Assert
	assert.NoError(t, err, "Ошибка отправки письма не должна ломать регистрацию")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail_Success(t *testing.T) {
	// Arrange: код совпадает, срок не истек (5 минут из 10)
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(5 * time.Minute)
	user := &entity.User{
		ID:                      1,
		Email:                   "user@example.com",
		VerificationCode:        "123456",
		VerificationCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	// После подтверждения код очищается — он одноразовый
	var updates map[string]interface{}
	mockUserRepo.On("UpdateProfile", uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) {
			updates = args.Get(1).(map[string]interface{})
		}).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.VerifyEmail(context.Background(), "user@example.com", "123456")

	// Assert
	require.NoError(t, err, "Подтверждение должно быть успешным")
	assert.Equal(t, true, updates["is_verified"])
	assert.Equal(t, "", updates["verification_code"], "Использованный код должен быть очищен")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_VerifyEmail_WrongCode(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(5 * time.Minute)
	user := &entity.User{
		ID:                      1,
		Email:                   "user@example.com",
		VerificationCode:        "123456",
		VerificationCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.VerifyEmail(context.Background(), "user@example.com", "654321")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	mockUserRepo.AssertNotCalled(t, "UpdateProfile")
}

func TestAuthService_VerifyEmail_ExpiredCode(t *testing.T) {
	// Arrange: код верный, но выдан больше 10 минут назад
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(-1 * time.Minute)
	user := &entity.User{
		ID:                      1,
		Email:                   "user@example.com",
		VerificationCode:        "123456",
		VerificationCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.VerifyEmail(context.Background(), "user@example.com", "123456")

	// Assert
	assert.ErrorIs(t, err, ErrVerificationExpired)
	mockUserRepo.AssertNotCalled(t, "UpdateProfile")
}

func TestAuthService_VerifyEmail_AlreadyVerified(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{ID: 1, Email: "user@example.com", IsVerified: true}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.VerifyEmail(context.Background(), "user@example.com", "123456")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{
		ID:         1,
		Email:      "user@example.com",
		Password:   hashPassword(t, "correctPassword"),
		Role:       "user",
		IsVerified: true,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	loggedIn, token, err := authService.Login(context.Background(), "user@example.com", "correctPassword")

	// Assert
	require.NoError(t, err, "Вход должен быть успешным")
	assert.Equal(t, uint(1), loggedIn.ID)
	assert.NotEmpty(t, token, "Должен быть выпущен access-токен")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{
		ID:         1,
		Email:      "user@example.com",
		Password:   hashPassword(t, "correctPassword"),
		IsVerified: true,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	_, _, err := authService.Login(context.Background(), "user@example.com", "wrongPassword")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	// Arrange: несуществующий email дает ту же ошибку, что и неверный пароль
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	mockUserRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	_, _, err := authService.Login(context.Background(), "ghost@example.com", "anyPassword")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_UnverifiedResendsCode(t *testing.T) {
	// Arrange: пароль верный, но email не подтвержден —
	// вход отклоняется, при этом пользователю уходит свежий код
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{
		ID:         1,
		Email:      "pending@example.com",
		Password:   hashPassword(t, "correctPassword"),
		IsVerified: false,
	}
	mockUserRepo.On("GetByEmail", "pending@example.com").Return(user, nil)
	mockUserRepo.On("UpdateProfile", uint(1), mock.AnythingOfType("map[string]interface {}")).Return(nil)
	mockEmail.On("SendVerificationCode", mock.Anything, "pending@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	_, token, err := authService.Login(context.Background(), "pending@example.com", "correctPassword")

	// Assert
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Empty(t, token, "Токен не должен выпускаться для неподтвержденного пользователя")
	mockUserRepo.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestAuthService_ForgotPassword_UnknownEmailSilent(t *testing.T) {
	// Arrange: несуществующий email не должен раскрываться через ошибку
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	mockUserRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ForgotPassword(context.Background(), "ghost@example.com")

	// Assert
	assert.NoError(t, err, "Для несуществующего email не должно быть ошибки")
	mockUserRepo.AssertNotCalled(t, "UpdateProfile")
	mockEmail.AssertNotCalled(t, "SendResetCode")
}

func TestAuthService_ForgotPassword_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{ID: 1, Email: "user@example.com", IsVerified: true}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	var storedCode string
	mockUserRepo.On("UpdateProfile", uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) {
			updates := args.Get(1).(map[string]interface{})
			storedCode = updates["reset_code"].(string)
		}).Return(nil)
	mockEmail.On("SendResetCode", mock.Anything, "user@example.com", mock.AnythingOfType("string"), mock.AnythingOfType("string")).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ForgotPassword(context.Background(), "user@example.com")

	// Assert
	require.NoError(t, err)
	assert.Len(t, storedCode, 6, "Код сброса должен состоять из 6 цифр")
	mockUserRepo.AssertExpectations(t)
	mockEmail.AssertExpectations(t)
}

func TestAuthService_ResetPassword_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(5 * time.Minute)
	user := &entity.User{
		ID:               1,
		Email:            "user@example.com",
		ResetCode:        "123456",
		ResetCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)
	mockUserRepo.On("UpdatePassword", uint(1), "newPassword123").Return(nil)

	// После смены пароля код сброса очищается
	var updates map[string]interface{}
	mockUserRepo.On("UpdateProfile", uint(1), mock.AnythingOfType("map[string]interface {}")).
		Run(func(args mock.Arguments) {
			updates = args.Get(1).(map[string]interface{})
		}).Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ResetPassword(context.Background(), "user@example.com", "123456", "newPassword123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "", updates["reset_code"], "Использованный код сброса должен быть очищен")
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(5 * time.Minute)
	user := &entity.User{
		ID:               1,
		Email:            "user@example.com",
		ResetCode:        "123456",
		ResetCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ResetPassword(context.Background(), "user@example.com", "000000", "newPassword123")

	// Assert
	assert.ErrorIs(t, err, ErrInvalidResetCode)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword")
}

func TestAuthService_ResetPassword_ExpiredCode(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	expires := time.Now().Add(-1 * time.Minute)
	user := &entity.User{
		ID:               1,
		Email:            "user@example.com",
		ResetCode:        "123456",
		ResetCodeExpires: &expires,
	}
	mockUserRepo.On("GetByEmail", "user@example.com").Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ResetPassword(context.Background(), "user@example.com", "123456", "newPassword123")

	// Assert
	assert.ErrorIs(t, err, ErrResetCodeExpired)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword")
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{
		ID:       1,
		Email:    "user@example.com",
		Password: hashPassword(t, "correctOldPassword"),
	}
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ChangePassword(context.Background(), 1, "wrongOldPassword", "newPassword")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword")
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockEmail := new(MockEmailService)

	user := &entity.User{
		ID:       1,
		Email:    "user@example.com",
		Password: hashPassword(t, "correctOldPassword"),
	}
	mockUserRepo.On("GetByID", uint(1)).Return(user, nil)
	mockUserRepo.On("UpdatePassword", uint(1), "newPassword").Return(nil)

	authService := createTestAuthService(mockUserRepo, mockEmail)

	// Act
	err := authService.ChangePassword(context.Background(), 1, "correctOldPassword", "newPassword")

	// Assert
	assert.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}
