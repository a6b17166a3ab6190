package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/yourusername/rent-api/internal/domain/entity"
	"github.com/yourusername/rent-api/internal/domain/repository"
	apperrors "github.com/yourusername/rent-api/internal/pkg/errors"
	"github.com/yourusername/rent-api/pkg/auth"
)

// maxPasswordBytes — предел bcrypt: более длинные пароли обрезаются алгоритмом молча,
// поэтому отклоняем их явно при регистрации.
const maxPasswordBytes = 72

// AuthService отвечает за регистрацию, подтверждение email, вход и операции с паролем
type AuthService struct {
	userRepo     repository.UserRepository
	jwtService   *auth.JWTService
	emailService EmailService
	codeTTL      time.Duration
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	emailService EmailService,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("jwt service is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	return &AuthService{
		userRepo:     userRepo,
		jwtService:   jwtService,
		emailService: emailService,
		codeTTL:      10 * time.Minute,
	}, nil
}

// Register регистрирует нового пользователя и отправляет код подтверждения.
// Если email уже занят неподтвержденным пользователем, выдается новый код
// вместо создания дубликата: reissued=true сообщает об этом вызывающему.
func (s *AuthService) Register(ctx context.Context, email, password string) (reissued bool, err error) {
	if len([]byte(password)) > maxPasswordBytes {
		return false, fmt.Errorf("%w: password is too long, use at most 72 bytes", apperrors.ErrValidation)
	}

	existing, err := s.userRepo.GetByEmail(email)
	if err == nil {
		if existing.IsVerified {
			return false, fmt.Errorf("%w: email already registered", apperrors.ErrValidation)
		}
		// Пользователь существует, но не подтвержден: переотправляем код
		if err := s.issueVerificationCode(ctx, existing); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != apperrors.ErrNotFound {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &entity.User{
		Email:    email,
		Password: password, // хешируется хуком BeforeSave
		Role:     "user",
	}
	if err := s.userRepo.Create(user); err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("[AuthService] Пользователь ID=%d (%s) зарегистрирован, ожидает подтверждения email", user.ID, user.Email)

	return false, s.issueVerificationCode(ctx, user)
}

// issueVerificationCode генерирует новый код подтверждения, сохраняет его
// и отправляет письмо. Ошибка отправки не фатальна: пользователь может
// запросить повторную отправку.
func (s *AuthService) issueVerificationCode(ctx context.Context, user *entity.User) error {
	code, err := generateNumericCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	expires := time.Now().Add(s.codeTTL)
	updates := map[string]interface{}{
		"verification_code":         code,
		"verification_code_expires": &expires,
	}
	if err := s.userRepo.UpdateProfile(user.ID, updates); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	idempotencyKey := fmt.Sprintf("email-verify:%d:%d", user.ID, expires.Unix())
	if err := s.emailService.SendVerificationCode(ctx, user.Email, code, idempotencyKey); err != nil {
		log.Printf("[AuthService] Не удалось отправить код подтверждения для %s: %v", user.Email, err)
	}
	return nil
}

// VerifyEmail подтверждает email пользователя по коду.
// Код одноразовый: после успешной проверки он очищается.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: user already verified", apperrors.ErrValidation)
	}
	if user.VerificationCode == "" || user.VerificationCode != code {
		return ErrInvalidVerificationCode
	}
	if user.VerificationCodeExpires != nil && user.VerificationCodeExpires.Before(time.Now()) {
		return ErrVerificationExpired
	}

	updates := map[string]interface{}{
		"is_verified":               true,
		"verification_code":         "",
		"verification_code_expires": nil,
	}
	if err := s.userRepo.UpdateProfile(user.ID, updates); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	log.Printf("[AuthService] Email подтвержден для пользователя ID=%d (%s)", user.ID, user.Email)
	return nil
}

// ResendVerification выдает новый код подтверждения
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: user already verified", apperrors.ErrValidation)
	}
	return s.issueVerificationCode(ctx, user)
}

// Login проверяет учетные данные и выпускает access-токен.
// Неподтвержденный пользователь войти не может; при этом ему автоматически
// переотправляется свежий код (ошибка отправки не блокирует ответ).
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.issueVerificationCode(ctx, user); err != nil {
			log.Printf("[AuthService] Не удалось переотправить код при входе для %s: %v", user.Email, err)
		}
		return nil, "", ErrEmailNotVerified
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// GetUser возвращает пользователя по ID
func (s *AuthService) GetUser(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// ForgotPassword выдает код сброса пароля. Для несуществующего email
// ошибка не возвращается, чтобы не раскрывать наличие аккаунта.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil
		}
		return err
	}

	code, err := generateNumericCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	expires := time.Now().Add(s.codeTTL)
	updates := map[string]interface{}{
		"reset_code":         code,
		"reset_code_expires": &expires,
	}
	if err := s.userRepo.UpdateProfile(user.ID, updates); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	idempotencyKey := fmt.Sprintf("password-reset:%d:%d", user.ID, expires.Unix())
	if err := s.emailService.SendResetCode(ctx, user.Email, code, idempotencyKey); err != nil {
		log.Printf("[AuthService] Не удалось отправить код сброса пароля для %s: %v", user.Email, err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по коду сброса.
// Код одноразовый: после успешной смены он очищается.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user.ResetCode == "" || user.ResetCode != code {
		return ErrInvalidResetCode
	}
	if user.ResetCodeExpires != nil && user.ResetCodeExpires.Before(time.Now()) {
		return ErrResetCodeExpired
	}

	if err := s.userRepo.UpdatePassword(user.ID, newPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	updates := map[string]interface{}{
		"reset_code":         "",
		"reset_code_expires": nil,
	}
	if err := s.userRepo.UpdateProfile(user.ID, updates); err != nil {
		return fmt.Errorf("failed to clear reset code: %w", err)
	}
	log.Printf("[AuthService] Пароль сброшен для пользователя ID=%d", user.ID)
	return nil
}

// ChangePassword меняет пароль аутентифицированного пользователя
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return fmt.Errorf("%w: incorrect old password", apperrors.ErrValidation)
	}
	return s.userRepo.UpdatePassword(userID, newPassword)
}

// generateNumericCode возвращает случайный 6-значный код
func generateNumericCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
