package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/techmaa/portal/internal/db"
	"github.com/techmaa/portal/types"
)

// StaffRepository handles persistence for staff accounts.
type StaffRepository struct {
	db *sql.DB
}

func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts the base row and the staff row in one transaction.
func (r *StaffRepository) Create(ctx context.Context, staff types.Staff) (types.Staff, error) {
	staff.Role = types.RoleStaff
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, &staff.User); err != nil {
			return err
		}
		staff.StaffID = types.FormatStaffID(staff.ID)

		const query = `
			INSERT INTO staff (user_id, staff_id, department, staff_role, address, age, gender, course_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := tx.ExecContext(
			ctx,
			query,
			staff.ID,
			staff.StaffID,
			nullString(string(staff.Department)),
			nullString(string(staff.StaffRole)),
			nullString(staff.Address),
			nullInt(staff.Age),
			nullString(string(staff.Gender)),
			nullID(courseID(staff.Course)),
		)
		return mapWriteError(err)
	})
	if err != nil {
		return types.Staff{}, err
	}
	return staff, nil
}

func (r *StaffRepository) GetActiveByUserID(ctx context.Context, id int64) (types.Staff, error) {
	const query = `
		SELECT ` + userColumns + `, st.staff_id, st.department, st.staff_role, st.address, st.age, st.gender,
			` + courseColumns + `
		FROM users u
		JOIN staff st ON st.user_id = u.id
		LEFT JOIN courses c ON c.id = st.course_id
		WHERE u.id = $1 AND NOT u.is_deleted`
	var staff types.Staff
	var sc userScan
	var cs courseScan
	var department, staffRole, address, gender sql.NullString
	var age sql.NullInt64
	dest := append(sc.dest(&staff.User), &staff.StaffID, &department, &staffRole, &address, &age, &gender)
	dest = append(dest, cs.dest()...)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Staff{}, ErrNotFound
		}
		return types.Staff{}, err
	}
	sc.apply(&staff.User)
	staff.Department = types.Department(department.String)
	staff.StaffRole = types.StaffRole(staffRole.String)
	staff.Address = address.String
	staff.Age = intPtr(age)
	staff.Gender = types.Gender(gender.String)
	staff.Course = cs.course()
	return staff, nil
}

func (r *StaffRepository) Update(ctx context.Context, staff types.Staff) (types.Staff, error) {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateUser(ctx, tx, &staff.User); err != nil {
			return err
		}
		const query = `
			UPDATE staff
			SET department = $1,
				staff_role = $2,
				address = $3,
				age = $4,
				gender = $5,
				course_id = $6
			WHERE user_id = $7`
		_, err := tx.ExecContext(
			ctx,
			query,
			nullString(string(staff.Department)),
			nullString(string(staff.StaffRole)),
			nullString(staff.Address),
			nullInt(staff.Age),
			nullString(string(staff.Gender)),
			nullID(courseID(staff.Course)),
			staff.ID,
		)
		return err
	})
	if err != nil {
		return types.Staff{}, err
	}
	return staff, nil
}
