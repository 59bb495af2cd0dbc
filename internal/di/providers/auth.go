package providers

import (
	"github.com/samber/do/v2"

	"github.com/notekeeper/notekeeper-server/internal/auth"
	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/logger"
)

// AuthKey wraps the token signing key bytes.
type AuthKey []byte

// ProvideAuthKey decodes the configured secret key, or loads the key file
// from the data directory, generating it on first start.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.SecretKey != "" {
		key, err := auth.DecodeKey(cfg.Auth.SecretKey)
		if err != nil {
			return nil, err
		}
		log.Info("Authentication key loaded from configuration",
			"access_token_ttl", cfg.Auth.AccessTokenTTL,
		)
		return AuthKey(key), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"data_dir", cfg.DataDir,
		"access_token_ttl", cfg.Auth.AccessTokenTTL,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(authKey), cfg.Auth.AccessTokenTTL)
}
