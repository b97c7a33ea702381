// Package bootstrap wires the process-wide dependencies shared by the server and the CLIs.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pitchside/internal/auth"
	"pitchside/internal/cache"
	"pitchside/internal/config"
	"pitchside/internal/database"
	"pitchside/internal/middleware"
	"pitchside/internal/models"
	"pitchside/internal/observability"
	"pitchside/internal/repository"
	"pitchside/internal/sweeper"
	"pitchside/internal/validation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// StartSweeper schedules the expiry jobs when SWEEPER_ENABLED is set.
	StartSweeper bool
	// EnsureAdmin creates the default admin account when no admin exists.
	EnsureAdmin bool
	// SkipSchema connects without applying migrations.
	SkipSchema bool
}

// Runtime holds the initialized dependencies. Close releases them.
type Runtime struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Cache   *cache.Cache
	Sweeper *sweeper.Sweeper

	stopTracing func(context.Context) error
}

// InitRuntime configures logging and tracing, connects to the database and Redis and
// optionally starts the sweeper. Redis is optional; an unreachable server leaves it nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	stopTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "pitchside-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	rt := &Runtime{Config: cfg, stopTracing: stopTracing}

	rt.DB, err = database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: !opts.SkipSchema})
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt.Redis = cache.Connect(ctx, cfg.RedisURL)
	rt.Cache = cache.New(rt.Redis)

	if opts.EnsureAdmin {
		if _, err := EnsureDefaultAdmin(ctx, cfg, repository.NewUserRepository(rt.DB, rt.Cache)); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to bootstrap default admin: %w", err)
		}
	}

	if opts.StartSweeper && cfg.SweeperEnabled {
		swCfg, err := sweeper.ConfigFrom(cfg)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		rt.Sweeper, err = sweeper.New(repository.NewSweepRepository(rt.DB), nil, swCfg)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
		rt.Sweeper.Start()
	}

	return rt, nil
}

// Close stops the sweeper, then closes Redis, the database pool and the tracer, in that order.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.Sweeper != nil {
		if err := r.Sweeper.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close database: %w", err))
			}
		}
	}
	if r.stopTracing != nil {
		if err := r.stopTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// EnsureDefaultAdmin makes sure at least one admin exists. When none does, the account at
// DEFAULT_ADMIN_EMAIL is promoted, or created with DEFAULT_ADMIN_PASSWORD. It reports
// whether it changed anything.
func EnsureDefaultAdmin(ctx context.Context, cfg *config.Config, users repository.UserRepository) (bool, error) {
	admins, err := users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return false, nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.DefaultAdminEmail))
	if email == "" {
		return false, errors.New("DEFAULT_ADMIN_EMAIL is required when no admin exists")
	}

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		existing.Role = models.RoleAdmin
		if err := users.Update(ctx, existing); err != nil {
			return false, err
		}
		middleware.Logger.InfoContext(ctx, "Promoted existing account to admin", slog.String("email", email))
		return true, nil
	}

	if cfg.DefaultAdminPassword == "" {
		middleware.Logger.WarnContext(ctx, "No admin account exists and DEFAULT_ADMIN_PASSWORD is empty; skipping default admin")
		return false, nil
	}
	if err := validation.ValidatePassword(cfg.DefaultAdminPassword); err != nil {
		return false, fmt.Errorf("DEFAULT_ADMIN_PASSWORD: %w", err)
	}

	hashed, err := auth.HashPassword(cfg.DefaultAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Email:    email,
		Password: hashed,
		Name:     cfg.DefaultAdminName,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, err
	}
	middleware.Logger.InfoContext(ctx, "Created default admin account", slog.String("email", email))
	return true, nil
}
