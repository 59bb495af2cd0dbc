package api

import (
	"context"
	"strings"

	"github.com/notekeeper/notekeeper-server/internal/domain"
	domainerrors "github.com/notekeeper/notekeeper-server/internal/errors"
)

const msgNotAuthenticated = "Not authenticated"

// authenticateRequest validates the Authorization header and returns the caller.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*domain.User, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized(msgNotAuthenticated)
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, domainerrors.Unauthorized(msgNotAuthenticated)
	}

	return s.services.Auth.Authenticate(ctx, strings.TrimSpace(token))
}
