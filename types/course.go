package types

import "time"

// Course is an academic programme that staff teach and students enrol in.
// Staff and students reference a course by ID; the course row does not
// track its members.
type Course struct {
	// ID is the unique identifier of the course.
	ID int64 `json:"id" db:"id"`

	// Title is the course name shown to users and matched by the directory
	// course filter.
	Title string `json:"title" db:"title"`

	// Description is an optional free-form summary.
	Description string `json:"description,omitempty" db:"description"`

	IsDeleted bool      `json:"-" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
