package service

import "errors"

// Flow specific errors used by handlers for stable error mapping.
var (
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrEmailNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified         = errors.New("user already verified")
	ErrInvalidVerificationCode = errors.New("invalid verification code")
	ErrVerificationExpired     = errors.New("verification code expired")
	ErrInvalidResetCode        = errors.New("invalid reset code")
	ErrResetCodeExpired        = errors.New("reset code expired")

	ErrOutOfStock        = errors.New("product out of stock")
	ErrInsufficientFunds = errors.New("insufficient balance")

	ErrPromoCodeInactive = errors.New("promotion code is not active")
	ErrPromoCodeRedeemed = errors.New("promotion code already redeemed")
)
