package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/assessai/internal/app/models"
	"github.com/yigit/assessai/internal/db"
	"github.com/yigit/assessai/internal/pkg/apperrors"
	"github.com/yigit/assessai/internal/pkg/dberrors"
	"github.com/yigit/assessai/internal/pkg/logger"
)

// Unique constraints on the users table
const (
	constraintUsersUsername = "users_username_key"
	constraintUsersEmail    = "users_email_key"
)

var userColumns = []string{
	"id", "username", "email", "password_hash", "role", "first_name", "last_name",
	"created_at", "updated_at", "last_login", "is_active",
}

// UserRepository handles user and profile database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role,
		&user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt,
		&user.LastLogin, &user.IsActive,
	)
	return user, err
}

// mapUserWriteError translates unique violations into user sentinels
func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, constraintUsersUsername):
		return apperrors.ErrUsernameExists
	case dberrors.IsDuplicateConstraintError(err, constraintUsersEmail):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsUniqueViolation(err):
		return apperrors.ErrResourceAlreadyExists
	}
	return nil
}

// Create inserts a user and an empty profile in one transaction and sets user.ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	userSQL, userArgs, err := r.sb.Insert("users").
		Columns("username", "email", "password_hash", "role", "first_name", "last_name", "is_active").
		Values(user.Username, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName, user.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, userSQL, userArgs...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			if mapped := mapUserWriteError(err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
			return fmt.Errorf("error creating user: %w", err)
		}

		profileSQL, profileArgs, err := r.sb.Insert("user_profiles").
			Columns("user_id").
			Values(user.ID).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create profile query: %w", err)
		}
		if _, err := tx.Exec(ctx, profileSQL, profileArgs...); err != nil {
			logger.Error().Err(err).Int64("userID", user.ID).Msg("Error creating user profile")
			return fmt.Errorf("error creating user profile: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email))
}

// GetByLogin retrieves a user by username or email
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	return r.getOne(ctx, squirrel.Or{
		squirrel.Eq{"username": login},
		squirrel.Expr("LOWER(email) = LOWER(?)", login),
	})
}

// List returns a page of users ordered by creation date and the total count
func (r *UserRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.User, int64, error) {
	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	users, err := r.list(ctx, r.sb.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)))
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Recent returns the most recently created users
func (r *UserRepository) Recent(ctx context.Context, limit int) ([]*models.User, error) {
	return r.list(ctx, r.sb.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

func (r *UserRepository) list(ctx context.Context, query squirrel.SelectBuilder) ([]*models.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// Update saves the editable user fields, including the password hash
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role":          user.Role,
			"first_name":    user.FirstName,
			"last_name":     user.LastName,
			"is_active":     user.IsActive,
			"updated_at":    time.Now(),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.updateFields(ctx, userID, map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
}

// UpdateLastLogin stamps the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	return r.updateFields(ctx, userID, map[string]interface{}{"last_login": time.Now()})
}

func (r *UserRepository) updateFields(ctx context.Context, userID int64, fields map[string]interface{}) error {
	sql, args, err := r.sb.Update("users").
		SetMap(fields).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating user fields")
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UsernameExists reports whether another user already uses username
func (r *UserRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"username": username}, excludeID)
}

// EmailExists reports whether another user already uses email
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email), excludeID)
}

func (r *UserRepository) exists(ctx context.Context, where squirrel.Sqlizer, excludeID int64) (bool, error) {
	query := r.sb.Select("1").From("users").Where(where)
	if excludeID > 0 {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}
	sql, args, err := query.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error checking user uniqueness")
		return false, fmt.Errorf("error checking user uniqueness: %w", err)
	}
	return exists, nil
}

// GetProfile returns the user's profile, creating an empty one if it is missing
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	sql, args, err := r.sb.Insert("user_profiles").
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id").
		Suffix("RETURNING id, user_id, profile_picture, department, bio, preferences").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	profile := &models.UserProfile{}
	var prefs []byte
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&profile.ID, &profile.UserID, &profile.ProfilePicture, &profile.Department, &profile.Bio, &prefs,
	)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error loading user profile")
		return nil, fmt.Errorf("error loading user profile: %w", err)
	}
	profile.Preferences = json.RawMessage(prefs)
	return profile, nil
}

// UpdateProfile saves names, email and profile fields in one transaction
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User, profile *models.UserProfile) error {
	userSQL, userArgs, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile user query: %w", err)
	}

	profileSQL, profileArgs, err := r.sb.Update("user_profiles").
		SetMap(map[string]interface{}{
			"profile_picture": profile.ProfilePicture,
			"department":      profile.Department,
			"bio":             profile.Bio,
		}).
		Where(squirrel.Eq{"user_id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, userSQL, userArgs...)
		if err != nil {
			if mapped := mapUserWriteError(err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Int64("userID", user.ID).Msg("Error updating user for profile")
			return fmt.Errorf("error updating user: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrUserNotFound
		}
		if _, err := tx.Exec(ctx, profileSQL, profileArgs...); err != nil {
			logger.Error().Err(err).Int64("userID", user.ID).Msg("Error updating user profile")
			return fmt.Errorf("error updating user profile: %w", err)
		}
		return nil
	})
}
