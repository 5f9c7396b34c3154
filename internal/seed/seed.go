package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/assessai/internal/app/models"
	appRepos "github.com/yigit/assessai/internal/app/repositories"
	appServices "github.com/yigit/assessai/internal/app/services"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Username string
	Email    string
	Password string
}

// CreateDefaultData creates the default administrator and stores the default
// system settings when they don't exist yet.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, admin AdminAccount, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	settingsRepo := appRepos.NewSettingsRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (admin user, system settings)...")
	var finalErr error

	if err := ensureAdmin(ctx, userRepo, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		finalErr = errors.Join(finalErr, err)
	}

	if err := ensureSettings(ctx, settingsRepo, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error storing default system settings")
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

func ensureAdmin(ctx context.Context, users *appRepos.UserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	exists, err := users.UsernameExists(ctx, admin.Username, 0)
	if err != nil {
		return err
	}
	if exists {
		lgr.Debug().Str("username", admin.Username).Msg("Default admin user already exists")
		return nil
	}

	if admin.Password == "" {
		lgr.Warn().Msg("ADMIN_PASSWORD is not set, skipping creation of the default admin user")
		return nil
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	user := &appModels.User{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: hash,
		Role:         appModels.RoleAdmin,
		FirstName:    "System",
		LastName:     "Administrator",
		IsActive:     true,
	}
	if err := users.Create(ctx, user); err != nil {
		if apperrors.IsConflict(err) {
			lgr.Warn().Err(err).Msg("Default admin user conflicts with an existing account")
			return nil
		}
		return err
	}

	lgr.Info().Str("username", user.Username).Int64("userID", user.ID).Msg("Default admin user created")
	return nil
}

func ensureSettings(ctx context.Context, store *appRepos.SettingsRepository, lgr zerolog.Logger) error {
	stored, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(stored) > 0 {
		return nil
	}

	settingsService := appServices.NewSettingsService(store, nil, lgr)
	if _, err := settingsService.Update(ctx, appModels.DefaultSystemSettings()); err != nil {
		return err
	}
	lgr.Info().Msg("Default system settings stored")
	return nil
}
