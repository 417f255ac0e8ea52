package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// AuthRepository defines the interface for authentication-related database operations.
type AuthRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, userID int64) (*models.User, error)
	UpdatePassword(ctx context.Context, executor SQLExecutor, userID int64, passwordHash string) error
	GetUsers(ctx context.Context, filters models.UserFilters) ([]models.User, int, error)
	UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error
	DeleteUser(ctx context.Context, executor SQLExecutor, userID int64) error
}

// authRepository implements the AuthRepository interface.
type authRepository struct {
	db *sql.DB // The direct database connection pool
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

// CreateUser inserts a new user. user.PasswordHash must already be hashed.
// IsActive is set to true and the timestamps to the current time.
func (r *authRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	now := nowUTC()
	user.IsActive = true
	user.CreatedAt, user.UpdatedAt = now, now

	err := executor.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return 0, translateError(err, "creating user")
	}
	return user.ID, nil
}

const userColumns = `id, username, password_hash, role, is_active, created_at, updated_at`

func scanUserRow(row scanner, extra ...interface{}) (*models.User, error) {
	user := &models.User{}
	dest := []interface{}{&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return user, nil
}

// FindUserByUsername retrieves a user, password hash included.
func (r *authRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUserRow(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by username %s: %v", ErrDatabaseError, username, err)
	}
	return user, nil
}

func (r *authRepository) FindUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUserRow(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, userID, err)
	}
	return user, nil
}

func (r *authRepository) UpdatePassword(ctx context.Context, executor SQLExecutor, userID int64, passwordHash string) error {
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, nowUTC(), userID)
	if err != nil {
		return fmt.Errorf("%w: updating password for user %d: %v", ErrDatabaseError, userID, err)
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("password update for user %d", userID))
	return err
}

// GetUsers lists accounts ordered by username.
func (r *authRepository) GetUsers(ctx context.Context, filters models.UserFilters) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count FROM users`)

	var where whereBuilder
	if filters.Role != nil && *filters.Role != "" {
		where.add("role = $%d", *filters.Role)
	}
	if filters.IsActive != nil {
		where.add("is_active = $%d", *filters.IsActive)
	}
	if filters.Search != nil && *filters.Search != "" {
		where.add("username ILIKE $%d", "%"+strings.TrimSpace(*filters.Search)+"%")
	}
	where.writeTo(&queryBuilder, "username ASC, id ASC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUserRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// UpdateUser writes username, role and is_active. The password hash is changed through UpdatePassword.
func (r *authRepository) UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error {
	user.UpdatedAt = nowUTC()
	result, err := executor.ExecContext(ctx,
		`UPDATE users SET username = $1, role = $2, is_active = $3, updated_at = $4 WHERE id = $5`,
		user.Username, user.Role, user.IsActive, user.UpdatedAt, user.ID)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating user ID %d", user.ID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("user update ID %d", user.ID))
	return err
}

// DeleteUser removes the account. Linked customer and employee rows keep existing with user_id cleared.
func (r *authRepository) DeleteUser(ctx context.Context, executor SQLExecutor, userID int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting user ID %d", userID))
	}
	_, err = affectedOrNotFound(result, fmt.Sprintf("deleting user ID %d", userID))
	return err
}
