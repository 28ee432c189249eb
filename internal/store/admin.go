package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/techmaa/portal/internal/db"
	"github.com/techmaa/portal/types"
)

// AdminRepository handles persistence for administrator accounts.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts the base row and the admin row in one transaction. The
// admin identifier is derived from the generated account ID.
func (r *AdminRepository) Create(ctx context.Context, admin types.Admin) (types.Admin, error) {
	admin.Role = types.RoleAdmin
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, &admin.User); err != nil {
			return err
		}
		admin.AdminID = types.FormatAdminID(admin.ID)

		const query = `INSERT INTO admins (user_id, admin_id, gender) VALUES ($1, $2, $3)`
		_, err := tx.ExecContext(ctx, query, admin.ID, admin.AdminID, nullString(string(admin.Gender)))
		return mapWriteError(err)
	})
	if err != nil {
		return types.Admin{}, err
	}
	return admin, nil
}

func (r *AdminRepository) GetActiveByUserID(ctx context.Context, id int64) (types.Admin, error) {
	const query = `
		SELECT ` + userColumns + `, a.admin_id, a.gender
		FROM users u
		JOIN admins a ON a.user_id = u.id
		WHERE u.id = $1 AND NOT u.is_deleted`
	var admin types.Admin
	var sc userScan
	var gender sql.NullString
	dest := append(sc.dest(&admin.User), &admin.AdminID, &gender)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Admin{}, ErrNotFound
		}
		return types.Admin{}, err
	}
	sc.apply(&admin.User)
	admin.Gender = types.Gender(gender.String)
	return admin, nil
}

func (r *AdminRepository) Update(ctx context.Context, admin types.Admin) (types.Admin, error) {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateUser(ctx, tx, &admin.User); err != nil {
			return err
		}
		const query = `UPDATE admins SET gender = $1 WHERE user_id = $2`
		_, err := tx.ExecContext(ctx, query, nullString(string(admin.Gender)), admin.ID)
		return err
	})
	if err != nil {
		return types.Admin{}, err
	}
	return admin, nil
}
