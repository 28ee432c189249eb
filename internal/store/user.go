package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/techmaa/portal/types"
)

const userColumns = `u.id, u.email, u.phone, u.name, u.password_hash, u.role, u.is_deleted, u.created_at, u.updated_at`

// UserRepository handles the base account rows shared by every role.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetActiveByID(ctx context.Context, id int64) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 AND NOT u.is_deleted`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1) AND NOT u.is_deleted`
	return r.getOne(ctx, query, email)
}

func (r *UserRepository) GetActiveByPhone(ctx context.Context, phone string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users u WHERE u.phone = $1 AND NOT u.is_deleted`
	return r.getOne(ctx, query, phone)
}

func (r *UserRepository) ExistsActiveByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND NOT is_deleted)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) ExistsActiveByPhone(ctx context.Context, phone string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1 AND NOT is_deleted)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, phone).Scan(&exists)
	return exists, err
}

// SoftDelete marks the account deleted. The row and its role record stay.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `
		UPDATE users
		SET is_deleted = TRUE,
			updated_at = $2
		WHERE id = $1 AND NOT is_deleted`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (types.User, error) {
	var user types.User
	var sc userScan
	err := r.db.QueryRowContext(ctx, query, arg).Scan(sc.dest(&user)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	sc.apply(&user)
	return user, nil
}

// userScan holds the nullable base columns while a row is scanned.
type userScan struct {
	email sql.NullString
	phone sql.NullString
}

func (s *userScan) dest(u *types.User) []any {
	return []any{
		&u.ID,
		&s.email,
		&s.phone,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	}
}

func (s *userScan) apply(u *types.User) {
	u.Email = s.email.String
	u.Phone = s.phone.String
}

// insertUser writes the base row inside tx and fills in ID and timestamps.
func insertUser(ctx context.Context, tx *sql.Tx, user *types.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsDeleted = false

	const query = `
		INSERT INTO users (email, phone, name, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := tx.QueryRowContext(
		ctx,
		query,
		nullString(user.Email),
		nullString(user.Phone),
		user.Name,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	return mapWriteError(err)
}

// updateUser writes the mutable base fields inside tx.
func updateUser(ctx context.Context, tx *sql.Tx, user *types.User) error {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET name = $1,
			password_hash = $2,
			updated_at = $3
		WHERE id = $4 AND NOT is_deleted`
	result, err := tx.ExecContext(ctx, query, user.Name, user.PasswordHash, user.UpdatedAt, user.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
