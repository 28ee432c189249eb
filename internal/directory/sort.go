package directory

import (
	"strings"

	"github.com/techmaa/portal/internal/apperr"
)

const DefaultSortField = FieldCreatedAt

// Sort is a single-key ordering.
type Sort struct {
	Field Field
	Desc  bool
}

var sortable = map[Field]bool{
	FieldCreatedAt:    true,
	FieldUpdatedAt:    true,
	FieldName:         true,
	FieldEmail:        true,
	FieldPhone:        true,
	FieldRollNo:       true,
	FieldCourseTitle:  true,
	FieldDepartment:   true,
	FieldGender:       true,
	FieldMarks:        true,
	FieldAge:          true,
	FieldAcademicYear: true,
	FieldSemester:     true,
}

// ParseSort validates a sort key and direction. An empty key sorts by
// creation time; any direction other than "desc" is ascending.
func ParseSort(by, dir string) (Sort, error) {
	field := Field(strings.TrimSpace(by))
	if field == "" {
		field = DefaultSortField
	}
	if !sortable[field] {
		return Sort{}, apperr.Invalid("invalid sort field", map[string]string{"sort_by": string(field)})
	}
	return Sort{
		Field: field,
		Desc:  strings.EqualFold(strings.TrimSpace(dir), "desc"),
	}, nil
}
