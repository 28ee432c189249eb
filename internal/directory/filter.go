// Package directory turns student search criteria into a list of predicates
// and a sort order. The predicates are rendered to SQL by the store and can
// also be evaluated in process with Match.
package directory

import (
	"errors"
	"strings"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/types"
)

// Field names a searchable or sortable student attribute.
type Field string

const (
	FieldName         Field = "name"
	FieldAddress      Field = "address"
	FieldEmail        Field = "email"
	FieldPhone        Field = "phone"
	FieldCourseTitle  Field = "courseTitle"
	FieldDepartment   Field = "department"
	FieldGender       Field = "gender"
	FieldRollNo       Field = "rollNo"
	FieldMarks        Field = "marks"
	FieldAge          Field = "age"
	FieldAcademicYear Field = "academicYear"
	FieldSemester     Field = "semester"
	FieldIsDeleted    Field = "isDeleted"
	FieldCreatedAt    Field = "createdAt"
	FieldUpdatedAt    Field = "updatedAt"
)

// Op is the comparison a predicate applies.
type Op int

const (
	// OpEqual is exact equality.
	OpEqual Op = iota
	// OpEqualFold is case-insensitive string equality.
	OpEqualFold
	// OpContainsFold is a case-insensitive substring match.
	OpContainsFold
	// OpGTE is a numeric greater-than-or-equal comparison.
	OpGTE
)

// Predicate is a single condition. When AnyOf is non-empty the predicate is
// the disjunction of its members and Field, Op and Value are unused.
type Predicate struct {
	Field Field
	Op    Op
	Value any
	AnyOf []Predicate
}

// Criteria holds the optional student search filters. Empty strings and a
// nil Marks mean "no constraint".
type Criteria struct {
	Keyword    string
	Email      string
	Phone      string
	Name       string
	CourseName string
	Department string
	Gender     string
	RollNo     string
	Marks      *float64
	SortBy     string
	SortDir    string
}

// BuildFilter converts criteria into an AND-composed predicate list. The
// result always excludes soft-deleted students.
func BuildFilter(c Criteria) ([]Predicate, error) {
	var preds []Predicate

	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		preds = append(preds, Predicate{AnyOf: []Predicate{
			{Field: FieldName, Op: OpContainsFold, Value: kw},
			{Field: FieldAddress, Op: OpContainsFold, Value: kw},
		}})
	}
	if v := strings.TrimSpace(c.Email); v != "" {
		preds = append(preds, Predicate{Field: FieldEmail, Op: OpEqualFold, Value: v})
	}
	if v := strings.TrimSpace(c.Phone); v != "" {
		preds = append(preds, Predicate{Field: FieldPhone, Op: OpEqual, Value: v})
	}
	if v := strings.TrimSpace(c.Name); v != "" {
		preds = append(preds, Predicate{Field: FieldName, Op: OpEqualFold, Value: v})
	}
	if v := strings.TrimSpace(c.CourseName); v != "" {
		preds = append(preds, Predicate{Field: FieldCourseTitle, Op: OpEqualFold, Value: v})
	}
	if v := strings.TrimSpace(c.Department); v != "" {
		dept, err := types.ParseDepartment(v)
		if err != nil {
			return nil, invalidCriteria("department", err)
		}
		preds = append(preds, Predicate{Field: FieldDepartment, Op: OpEqual, Value: string(dept)})
	}
	if v := strings.TrimSpace(c.Gender); v != "" {
		gender, err := types.ParseGender(v)
		if err != nil {
			return nil, invalidCriteria("gender", err)
		}
		preds = append(preds, Predicate{Field: FieldGender, Op: OpEqual, Value: string(gender)})
	}
	if v := strings.TrimSpace(c.RollNo); v != "" {
		preds = append(preds, Predicate{Field: FieldRollNo, Op: OpEqual, Value: v})
	}
	if c.Marks != nil {
		preds = append(preds, Predicate{Field: FieldMarks, Op: OpGTE, Value: *c.Marks})
	}

	preds = append(preds, Predicate{Field: FieldIsDeleted, Op: OpEqual, Value: false})
	return preds, nil
}

func invalidCriteria(field string, err error) error {
	if errors.Is(err, types.ErrUnknownValue) {
		return apperr.Invalid("invalid "+field, map[string]string{field: err.Error()})
	}
	return apperr.Internal("parse "+field, err)
}
