package store

import (
	"fmt"
	"strings"

	"github.com/techmaa/portal/internal/directory"
)

type column struct {
	expr string
	text bool
}

// studentColumns maps directory fields onto the student search query.
var studentColumns = map[directory.Field]column{
	directory.FieldName:         {expr: "u.name", text: true},
	directory.FieldAddress:      {expr: "s.address", text: true},
	directory.FieldEmail:        {expr: "u.email", text: true},
	directory.FieldPhone:        {expr: "u.phone", text: true},
	directory.FieldCourseTitle:  {expr: "c.title", text: true},
	directory.FieldDepartment:   {expr: "s.department", text: true},
	directory.FieldGender:       {expr: "s.gender", text: true},
	directory.FieldRollNo:       {expr: "s.roll_no", text: true},
	directory.FieldMarks:        {expr: "s.marks"},
	directory.FieldAge:          {expr: "s.age"},
	directory.FieldAcademicYear: {expr: "s.academic_year"},
	directory.FieldSemester:     {expr: "s.semester"},
	directory.FieldIsDeleted:    {expr: "u.is_deleted"},
	directory.FieldCreatedAt:    {expr: "u.created_at"},
	directory.FieldUpdatedAt:    {expr: "u.updated_at"},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// renderWhere turns predicates into a parameterised SQL condition. Argument
// placeholders start at $1.
func renderWhere(preds []directory.Predicate) (string, []any, error) {
	var args []any
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		clause, err := renderPredicate(p, &args)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, clause)
	}
	if len(parts) == 0 {
		return "TRUE", nil, nil
	}
	return strings.Join(parts, " AND "), args, nil
}

func renderPredicate(p directory.Predicate, args *[]any) (string, error) {
	if len(p.AnyOf) > 0 {
		alts := make([]string, 0, len(p.AnyOf))
		for _, alt := range p.AnyOf {
			clause, err := renderPredicate(alt, args)
			if err != nil {
				return "", err
			}
			alts = append(alts, clause)
		}
		return "(" + strings.Join(alts, " OR ") + ")", nil
	}

	col, ok := studentColumns[p.Field]
	if !ok {
		return "", fmt.Errorf("unsupported filter field %q", p.Field)
	}
	bind := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}

	switch p.Op {
	case directory.OpEqual:
		return fmt.Sprintf("%s = %s", col.expr, bind(p.Value)), nil
	case directory.OpEqualFold:
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", col.expr, bind(p.Value)), nil
	case directory.OpContainsFold:
		s, _ := p.Value.(string)
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		return fmt.Sprintf(`LOWER(%s) LIKE %s ESCAPE '\'`, col.expr, bind(pattern)), nil
	case directory.OpGTE:
		return fmt.Sprintf("%s >= %s", col.expr, bind(p.Value)), nil
	default:
		return "", fmt.Errorf("unsupported filter op %d", p.Op)
	}
}

// renderOrder renders the ORDER BY list. Missing values sort lowest and the
// account ID breaks ties.
func renderOrder(order directory.Sort) (string, error) {
	col, ok := studentColumns[order.Field]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", order.Field)
	}
	expr := col.expr
	if col.text {
		expr = "LOWER(" + expr + ")"
	}
	if order.Desc {
		return expr + " DESC NULLS LAST, u.id ASC", nil
	}
	return expr + " ASC NULLS FIRST, u.id ASC", nil
}
