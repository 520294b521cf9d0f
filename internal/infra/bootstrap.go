package infra

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Abin-1409/fuel-swift/internal/config"
	"github.com/Abin-1409/fuel-swift/internal/util"
)

type adminUpserter interface {
	EnsureAdmin(ctx context.Context, email, phone, passwordHash string) error
}

// EnsureAdmin upserts the configured admin account. It is a no-op unless both
// ADMIN_EMAIL and ADMIN_PASSWORD are set.
func EnsureAdmin(ctx context.Context, cfg config.Config, users adminUpserter, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	email, err := util.NormalizeEmail(cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("ADMIN_EMAIL: %w", err)
	}
	phone, err := util.NormalizePhone(cfg.AdminPhone)
	if err != nil {
		return fmt.Errorf("ADMIN_PHONE: %w", err)
	}
	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	if err := users.EnsureAdmin(ctx, email, phone, hash); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	logger.Info("admin account ensured", zap.String("email", email))
	return nil
}
