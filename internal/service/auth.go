// Package service implements the NoteKeeper use cases on top of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/metrics"
	"github.com/notekeeper/notekeeper-server/internal/store"
	"github.com/notekeeper/notekeeper-server/internal/validation"
)

// User-facing auth messages.
const (
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Incorrect email or password"
	msgUnauthorized       = "Could not validate credentials"
)

// TokenTypeBearer is the token_type returned on login.
const TokenTypeBearer = "bearer"

// AuthService handles registration, login, token verification and
// account deletion.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	validator *validation.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// dummyHash is verified against when the email is unknown, so login
	// takes the same time whether or not the account exists.
	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	st store.Store,
	tokens *auth.TokenService,
	v *validation.Validator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		validator: v,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,max=1024"`
	Name     *string `json:"name,omitempty" validate:"omitnil,max=255"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
	}

	err = s.store.InTx(ctx, func(tx store.Tx) error {
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.EmailTaken(msgEmailTaken)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.AuthEvent(metrics.AuthRegister)
	s.logger.Info("user registered", "user_id", user.ID, "display_name", user.DisplayName())

	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, req.Email)
		return err
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash := s.fallbackHash()
	if user != nil {
		hash = user.PasswordHash
	}
	valid, err := auth.VerifyPassword(hash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if user == nil || !valid {
		s.metrics.AuthEvent(metrics.AuthLoginFailure)
		return nil, domainerrors.InvalidCredentials(msgInvalidCredentials)
	}

	token, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.AuthEvent(metrics.AuthLoginSuccess)
	s.logger.Info("user logged in", "user_id", user.ID)

	return &TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// normalizeEmail returns the stored form of an address: trimmed and lower-cased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword("notekeeper-timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// Authenticate verifies a bearer token and resolves its user. Any failure,
// including a token for a deleted account, is Unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		s.metrics.AuthEvent(metrics.AuthTokenInvalid)
		return nil, domainerrors.Unauthorized(msgUnauthorized).WithCause(err)
	}

	user, err := s.Me(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the user row for an authenticated caller.
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	var user *domain.User
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		user, err = tx.GetUser(ctx, userID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.AuthEvent(metrics.AuthTokenInvalid)
		return nil, domainerrors.Unauthorized(msgUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the caller and everything they own in one transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) (domain.CascadeResult, error) {
	var res domain.CascadeResult
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		res, err = domain.CascadeDeleteUser(ctx, tx, userID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.CascadeResult{}, domainerrors.Unauthorized(msgUnauthorized)
	}
	if err != nil {
		return domain.CascadeResult{}, fmt.Errorf("delete account: %w", err)
	}

	s.metrics.AuthEvent(metrics.AuthAccountGone)
	s.metrics.CascadeDeleted(res.Books, res.Chapters, res.Notes, res.Tags, res.ResetTokens)
	s.logger.Info("account deleted",
		"user_id", userID,
		"books", res.Books,
		"chapters", res.Chapters,
		"notes", res.Notes,
		"tags", res.Tags,
	)
	return res, nil
}
