package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userSelect = `
	SELECT u.id, u.company_id, u.email, u.password_hash, u.role, u.google_id,
	       u.is_active, u.is_demo, u.password_reset_token_hash, u.password_reset_expires_at,
	       u.last_login_at, u.created_at, u.updated_at,
	       e.id, e.full_name
	FROM users u
	LEFT JOIN employees e ON e.user_id = u.id
`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.CompanyID,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.GoogleID,
		&u.IsActive,
		&u.IsDemo,
		&u.PasswordResetTokenHash,
		&u.PasswordResetExpiresAt,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.EmployeeID,
		&u.FullName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)
	return scanUser(q.QueryRow(ctx, userSelect+where, args...))
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `WHERE u.email = $1`, email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `WHERE u.id = $1`, id)
}

// GetByGoogleID implements user.UserRepository.
func (r *userRepositoryImpl) GetByGoogleID(ctx context.Context, googleID string) (user.User, error) {
	return r.getOne(ctx, `WHERE u.google_id = $1`, googleID)
}

// GetDemoUser implements user.UserRepository.
func (r *userRepositoryImpl) GetDemoUser(ctx context.Context, role user.Role) (user.User, error) {
	return r.getOne(ctx, `WHERE u.is_demo = TRUE AND u.is_active = TRUE AND u.role = $1 ORDER BY u.created_at LIMIT 1`, role)
}

// GetByPasswordResetToken implements user.UserRepository.
func (r *userRepositoryImpl) GetByPasswordResetToken(ctx context.Context, tokenHash string) (user.User, error) {
	return r.getOne(ctx, `WHERE u.password_reset_token_hash = $1 AND u.password_reset_expires_at > NOW()`, tokenHash)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (company_id, email, password_hash, role, google_id, is_active, is_demo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		newUser.CompanyID,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Role,
		newUser.GoogleID,
		newUser.IsActive,
		newUser.IsDemo,
	).Scan(&newUser.ID, &newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, err
	}
	return newUser, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// exec runs an UPDATE that must touch exactly one user.
func (r *userRepositoryImpl) exec(ctx context.Context, query string, args ...interface{}) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, userID string, googleID string) error {
	return r.exec(ctx, `UPDATE users SET google_id = $1, updated_at = NOW() WHERE id = $2`, googleID, userID)
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
}

// UpdateRole implements user.UserRepository.
func (r *userRepositoryImpl) UpdateRole(ctx context.Context, userID string, role user.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, userID)
}

// SetActive implements user.UserRepository.
func (r *userRepositoryImpl) SetActive(ctx context.Context, userID string, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, userID)
}

// SetPasswordResetToken implements user.UserRepository.
func (r *userRepositoryImpl) SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_reset_token_hash = $1, password_reset_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`, tokenHash, expiresAt, userID)
}

// ClearPasswordResetToken implements user.UserRepository.
func (r *userRepositoryImpl) ClearPasswordResetToken(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`, userID)
}

// TouchLastLogin implements user.UserRepository.
func (r *userRepositoryImpl) TouchLastLogin(ctx context.Context, userID string) error {
	return r.exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
}
