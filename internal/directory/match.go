package directory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/techmaa/portal/types"
)

// Match reports whether s satisfies every predicate.
func Match(preds []Predicate, s types.Student) bool {
	for _, p := range preds {
		if !matchOne(p, s) {
			return false
		}
	}
	return true
}

func matchOne(p Predicate, s types.Student) bool {
	if len(p.AnyOf) > 0 {
		for _, alt := range p.AnyOf {
			if matchOne(alt, s) {
				return true
			}
		}
		return false
	}

	actual := fieldValue(s, p.Field)
	switch p.Op {
	case OpEqual:
		return actual == p.Value
	case OpEqualFold:
		a, aok := actual.(string)
		b, bok := p.Value.(string)
		return aok && bok && strings.EqualFold(a, b)
	case OpContainsFold:
		a, aok := actual.(string)
		b, bok := p.Value.(string)
		return aok && bok && strings.Contains(strings.ToLower(a), strings.ToLower(b))
	case OpGTE:
		a, aok := actual.(float64)
		b, bok := p.Value.(float64)
		return aok && bok && a >= b
	default:
		return false
	}
}

// SortStudents orders students in place. Equal keys fall back to ascending
// ID so the order is deterministic.
func SortStudents(students []types.Student, order Sort) {
	slices.SortStableFunc(students, func(a, b types.Student) int {
		c := compareValues(fieldValue(a, order.Field), fieldValue(b, order.Field))
		if order.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func fieldValue(s types.Student, f Field) any {
	switch f {
	case FieldName:
		return s.Name
	case FieldAddress:
		return s.Address
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldCourseTitle:
		return s.CourseTitle()
	case FieldDepartment:
		return string(s.Department)
	case FieldGender:
		return string(s.Gender)
	case FieldRollNo:
		return s.RollNo
	case FieldMarks:
		return s.Marks
	case FieldAge:
		return optionalInt(s.Age)
	case FieldAcademicYear:
		return optionalInt(s.AcademicYear)
	case FieldSemester:
		return optionalInt(s.Semester)
	case FieldIsDeleted:
		return s.IsDeleted
	case FieldCreatedAt:
		return s.CreatedAt
	case FieldUpdatedAt:
		return s.UpdatedAt
	default:
		return nil
	}
}

// optionalInt maps a missing value below every present one.
func optionalInt(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
	case float64:
		bv, _ := b.(float64)
		return cmp.Compare(av, bv)
	case int:
		bv, _ := b.(int)
		return cmp.Compare(av, bv)
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	default:
		return 0
	}
}
