package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/techmaa/portal/internal/db"
	"github.com/techmaa/portal/internal/directory"
	"github.com/techmaa/portal/types"
)

const studentSelect = `
	SELECT ` + userColumns + `, s.roll_no, s.department, s.address, s.age, s.gender,
		s.academic_year, s.semester, s.marks, ` + courseColumns + `
	FROM users u
	JOIN students s ON s.user_id = u.id
	LEFT JOIN courses c ON c.id = s.course_id`

// StudentRepository handles persistence for student accounts and the
// student directory search.
type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts the base row and the student row in one transaction. The
// roll number is derived from the generated account ID.
func (r *StudentRepository) Create(ctx context.Context, student types.Student) (types.Student, error) {
	student.Role = types.RoleStudent
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, &student.User); err != nil {
			return err
		}
		student.RollNo = types.FormatRollNo(student.ID)

		const query = `
			INSERT INTO students (user_id, roll_no, department, address, age, gender, academic_year, semester, marks, course_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
		_, err := tx.ExecContext(
			ctx,
			query,
			student.ID,
			student.RollNo,
			nullString(string(student.Department)),
			nullString(student.Address),
			nullInt(student.Age),
			nullString(string(student.Gender)),
			nullInt(student.AcademicYear),
			nullInt(student.Semester),
			student.Marks,
			nullID(courseID(student.Course)),
		)
		return mapWriteError(err)
	})
	if err != nil {
		return types.Student{}, err
	}
	return student, nil
}

func (r *StudentRepository) GetActiveByUserID(ctx context.Context, id int64) (types.Student, error) {
	const query = studentSelect + ` WHERE u.id = $1 AND NOT u.is_deleted`
	return r.getOne(ctx, query, id)
}

func (r *StudentRepository) GetActiveByRollNo(ctx context.Context, rollNo string) (types.Student, error) {
	const query = studentSelect + ` WHERE s.roll_no = $1 AND NOT u.is_deleted`
	return r.getOne(ctx, query, rollNo)
}

func (r *StudentRepository) Update(ctx context.Context, student types.Student) (types.Student, error) {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateUser(ctx, tx, &student.User); err != nil {
			return err
		}
		const query = `
			UPDATE students
			SET department = $1,
				address = $2,
				age = $3,
				gender = $4,
				academic_year = $5,
				semester = $6,
				marks = $7,
				course_id = $8
			WHERE user_id = $9`
		_, err := tx.ExecContext(
			ctx,
			query,
			nullString(string(student.Department)),
			nullString(student.Address),
			nullInt(student.Age),
			nullString(string(student.Gender)),
			nullInt(student.AcademicYear),
			nullInt(student.Semester),
			student.Marks,
			nullID(courseID(student.Course)),
			student.ID,
		)
		return err
	})
	if err != nil {
		return types.Student{}, err
	}
	return student, nil
}

// Search returns the students matching every predicate, in the given order.
func (r *StudentRepository) Search(ctx context.Context, preds []directory.Predicate, order directory.Sort) ([]types.Student, error) {
	where, args, err := renderWhere(preds)
	if err != nil {
		return nil, err
	}
	orderBy, err := renderOrder(order)
	if err != nil {
		return nil, err
	}

	query := studentSelect + ` WHERE ` + where + ` ORDER BY ` + orderBy
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *StudentRepository) getOne(ctx context.Context, query string, arg any) (types.Student, error) {
	student, err := scanStudent(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, ErrNotFound
		}
		return types.Student{}, err
	}
	return student, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (types.Student, error) {
	var student types.Student
	var sc userScan
	var cs courseScan
	var department, address, gender sql.NullString
	var age, academicYear, semester sql.NullInt64

	dest := append(sc.dest(&student.User),
		&student.RollNo,
		&department,
		&address,
		&age,
		&gender,
		&academicYear,
		&semester,
		&student.Marks,
	)
	dest = append(dest, cs.dest()...)
	if err := row.Scan(dest...); err != nil {
		return types.Student{}, err
	}

	sc.apply(&student.User)
	student.Department = types.Department(department.String)
	student.Address = address.String
	student.Age = intPtr(age)
	student.Gender = types.Gender(gender.String)
	student.AcademicYear = intPtr(academicYear)
	student.Semester = intPtr(semester)
	student.Course = cs.course()
	return student, nil
}
