package providers

import (
	"github.com/samber/do/v2"

	"github.com/foliohq/folio-server/internal/auth"
	"github.com/foliohq/folio-server/internal/config"
	"github.com/foliohq/folio-server/internal/logger"
)

// AuthKey wraps the token encryption key bytes.
type AuthKey []byte

// ProvideAuthKey loads or generates the token key under the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.AuthKeyPath())
	if err != nil {
		return nil, err
	}

	log.Info("Authentication key loaded",
		"path", cfg.Data.AuthKeyPath(),
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(authKey, cfg.Auth.AccessTokenDuration)
}
