package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
	"github.com/notekeeper/notekeeper-server/internal/http/response"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/register",
		Summary:       "Register new user",
		Description:   "Creates a new user account",
		Tags:          tagsAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns a bearer session token",
		Tags:        tagsAuth,
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/auth/me",
		Summary:     "Current user",
		Description: "Returns the authenticated user",
		Tags:        tagsAuth,
		Security:    bearerSecurity,
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteMe",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/auth/me",
		Summary:       "Delete account",
		Description:   "Deletes the authenticated user with all books, chapters, notes, tags and reset tokens",
		Tags:          tagsAuth,
		Security:      bearerSecurity,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgotPassword",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/forgot-password",
		Summary:     "Request password reset",
		Description: "Issues a single-use reset token. The response never reveals whether the email is registered.",
		Tags:        tagsAuth,
	}, s.handleForgotPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/reset-password",
		Summary:     "Reset password",
		Description: "Consumes a reset token and sets a new password",
		Tags:        tagsAuth,
	}, s.handleResetPassword)
}

// === DTOs ===

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Email    string  `json:"email" format:"email" maxLength:"255" doc:"User email address"`
	Password string  `json:"password" minLength:"1" maxLength:"1024" doc:"User password"`
	Name     *string `json:"name,omitempty" maxLength:"255" doc:"Display name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID        int64     `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Email address"`
	Name      *string   `json:"name" doc:"Display name"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" maxLength:"255" doc:"User email"`
	Password string `json:"password" maxLength:"1024" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// TokenResponse is an OAuth2-style bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token" doc:"PASETO session token"`
	TokenType   string `json:"token_type" doc:"Always bearer"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

// AuthInput carries only the bearer token.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// ForgotPasswordRequest is the request body for starting a reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" format:"email" maxLength:"255" doc:"Account email"`
}

// ForgotPasswordInput wraps the forgot-password request for Huma.
type ForgotPasswordInput struct {
	Body ForgotPasswordRequest
}

// ForgotPasswordResponse is identical for known and unknown emails, except
// that development servers include the token for known ones.
type ForgotPasswordResponse struct {
	Message    string  `json:"message" doc:"Status message"`
	ResetToken *string `json:"reset_token,omitempty" doc:"Reset token, development mode only"`
}

// ForgotPasswordOutput wraps the forgot-password response for Huma.
type ForgotPasswordOutput struct {
	Body ForgotPasswordResponse
}

// ResetPasswordRequest is the request body for completing a reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" minLength:"1" maxLength:"256" doc:"Reset token"`
	NewPassword string `json:"new_password" minLength:"1" maxLength:"1024" doc:"New password"`
}

// ResetPasswordInput wraps the reset-password request for Huma.
type ResetPasswordInput struct {
	Body ResetPasswordRequest
}

// MessageResponse is a generic status message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*TokenOutput, error) {
	token, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType}}, nil
}

// handleLoginForm accepts application/x-www-form-urlencoded username and
// password fields, as OAuth2 password-flow clients send them.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, domainerrors.Validation("Invalid form body"), s.logger)
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	missing := make(map[string]string)
	if username == "" {
		missing["username"] = "is required"
	}
	if password == "" {
		missing["password"] = "is required"
	}
	if len(missing) > 0 {
		response.Error(w, domainerrors.ValidationWithDetails("validation failed", missing), s.logger)
		return
	}

	token, err := s.services.Auth.Login(r.Context(), service.LoginRequest{Email: username, Password: password})
	if err != nil {
		response.Error(w, err, s.logger)
		return
	}

	response.Success(w, TokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType}, s.logger)
}

func (s *Server) handleGetMe(ctx context.Context, input *AuthInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleDeleteMe(ctx context.Context, input *AuthInput) (*struct{}, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Auth.DeleteAccount(ctx, user.ID); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *Server) handleForgotPassword(ctx context.Context, input *ForgotPasswordInput) (*ForgotPasswordOutput, error) {
	resp, err := s.services.PasswordReset.RequestReset(ctx, service.ForgotPasswordRequest{Email: input.Body.Email})
	if err != nil {
		return nil, err
	}

	return &ForgotPasswordOutput{Body: ForgotPasswordResponse{
		Message:    resp.Message,
		ResetToken: resp.ResetToken,
	}}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*MessageOutput, error) {
	resp, err := s.services.PasswordReset.ConfirmReset(ctx, service.ResetPasswordRequest{
		Token:       input.Body.Token,
		NewPassword: input.Body.NewPassword,
	})
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: resp.Message}}, nil
}
