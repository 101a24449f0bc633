package app

import (
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/salesdesk/pkg/cryptox"
)

// signingSecret returns the configured JWT secret. Outside production an
// unset secret is replaced by a random one, which invalidates every session
// on restart.
func signingSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}
	if cfg.IsProduction() {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	logger.Warn("JWT_SECRET not set, using an ephemeral secret; sessions will not survive a restart")
	return []byte(secret), nil
}
