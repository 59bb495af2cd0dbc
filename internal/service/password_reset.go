package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// Password reset messages. The request message is identical for known and
// unknown emails outside development.
const (
	MsgResetRequested    = "If the email exists, a password reset link has been sent."
	MsgResetRequestedDev = "Password reset token generated. Check the response for the token (development only)."
	MsgResetConfirmed    = "Password has been reset successfully. You can now login with your new password."
	msgInvalidResetToken = "Invalid or expired reset token"
)

// DefaultResetTokenTTL is used when no TTL is configured.
const DefaultResetTokenTTL = time.Hour

// PasswordResetConfig configures the reset token lifecycle.
type PasswordResetConfig struct {
	TTL time.Duration
	// DevMode echoes the token in the response when the email exists.
	DevMode bool
	Now     func() time.Time
}

// PasswordResetService issues, validates, and redeems password reset tokens.
type PasswordResetService struct {
	store     store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	ttl     time.Duration
	devMode bool
	now     func() time.Time
}

// NewPasswordResetService creates a password reset service.
func NewPasswordResetService(
	st store.Store,
	v *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg PasswordResetConfig,
) *PasswordResetService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultResetTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PasswordResetService{
		store:     st,
		validator: v,
		metrics:   m,
		logger:    logger,
		ttl:       cfg.TTL,
		devMode:   cfg.DevMode,
		now:       cfg.Now,
	}
}

// ForgotPasswordRequest starts a reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ForgotPasswordResponse has the same shape whether or not the email exists.
type ForgotPasswordResponse struct {
	Message    string  `json:"message"`
	ResetToken *string `json:"reset_token,omitempty"`
}

// ResetPasswordRequest redeems a token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,max=256"`
	NewPassword string `json:"new_password" validate:"required,max=1024"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// RequestReset issues a token for the account behind email, if there is one.
// Prior tokens for the account stay valid.
func (s *PasswordResetService) RequestReset(ctx context.Context, req ForgotPasswordRequest) (*ForgotPasswordResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	s.metrics.ResetEvent(metrics.ResetRequested, 1)

	var token string
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		user, err := tx.GetUserByEmail(ctx, req.Email)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		token, err = s.Create(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("request password reset: %w", err)
	}

	resp := &ForgotPasswordResponse{Message: MsgResetRequested}
	if token != "" && s.devMode {
		resp.Message = MsgResetRequestedDev
		resp.ResetToken = &token
	}
	return resp, nil
}

// Create issues a new token for userID inside tx and returns the opaque
// token string. Only its digest is stored.
func (s *PasswordResetService) Create(ctx context.Context, tx store.Tx, userID int64) (string, error) {
	token, err := auth.GenerateResetToken()
	if err != nil {
		return "", err
	}

	row := &domain.PasswordResetToken{
		UserID:    userID,
		TokenHash: auth.HashResetToken(token),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := tx.CreateResetToken(ctx, row); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	s.metrics.ResetEvent(metrics.ResetIssued, 1)
	s.logger.Info("password reset token issued", "user_id", userID, "expires_at", row.ExpiresAt)
	return token, nil
}

// Validate looks token up and checks it is unused and unexpired.
func (s *PasswordResetService) Validate(ctx context.Context, tx store.Tx, token string) (*domain.PasswordResetToken, error) {
	row, err := tx.GetResetTokenByHash(ctx, auth.HashResetToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidResetToken(msgInvalidResetToken)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup reset token: %w", err)
	}
	if !row.IsValid(s.now()) {
		return nil, domainerrors.InvalidResetToken(msgInvalidResetToken)
	}
	return row, nil
}

// ConfirmReset sets a new password and consumes the token in one
// transaction. A token can win exactly once.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var userID int64
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		row, err := s.Validate(ctx, tx, req.Token)
		if err != nil {
			return err
		}

		consumed, err := tx.MarkResetTokenUsed(ctx, row.ID)
		if err != nil {
			return fmt.Errorf("consume reset token: %w", err)
		}
		if !consumed {
			return domainerrors.InvalidResetToken(msgInvalidResetToken)
		}

		if err := tx.UpdateUserPassword(ctx, row.UserID, passwordHash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domainerrors.InvalidResetToken(msgInvalidResetToken)
			}
			return fmt.Errorf("update password: %w", err)
		}
		userID = row.UserID
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidResetToken) {
			s.metrics.ResetEvent(metrics.ResetRejected, 1)
		}
		return nil, err
	}

	s.metrics.ResetEvent(metrics.ResetConfirmed, 1)
	s.logger.Info("password reset", "user_id", userID)

	return &MessageResponse{Message: MsgResetConfirmed}, nil
}

// PurgeExpired deletes tokens that expired at or before now and returns
// how many were removed.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	var n int64
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		n, err = tx.DeleteExpiredResetTokens(ctx, s.now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}

	s.metrics.ResetEvent(metrics.ResetPurged, n)
	return n, nil
}
