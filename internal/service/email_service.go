package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error
	SendResetCode(ctx context.Context, toEmail, code, idempotencyKey string) error
}

// ConsoleEmailService is used when no email backend is configured.
// Codes are printed to the log so local flows keep working.
type ConsoleEmailService struct{}

func (s *ConsoleEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	log.Printf("[EmailService] EMAIL NOT CONFIGURED - verification code for %s: %s (expires in 10 minutes)", toEmail, code)
	return nil
}

func (s *ConsoleEmailService) SendResetCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	log.Printf("[EmailService] EMAIL NOT CONFIGURED - password reset code for %s: %s (expires in 10 minutes)", toEmail, code)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendVerificationCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	return s.send(ctx, toEmail, idempotencyKey,
		"Verify your email",
		fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code),
		fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>", code),
	)
}

func (s *ResendEmailService) SendResetCode(ctx context.Context, toEmail, code, idempotencyKey string) error {
	return s.send(ctx, toEmail, idempotencyKey,
		"Reset your password",
		fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code),
		fmt.Sprintf("<p>Your password reset code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p><p>If you did not request a reset, ignore this email.</p>", code),
	)
}

func (s *ResendEmailService) send(ctx context.Context, toEmail, idempotencyKey, subject, text, html string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: subject,
		Text:    text,
		Html:    html,
	}

	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
