package services

import (
	"context"
	"errors"
	"strings"

	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/store"
	"github.com/techmaa/portal/types"
)

// CourseService encapsulates course use-cases.
type CourseService struct {
	repo CourseRepository
}

func NewCourseService(repo CourseRepository) *CourseService {
	return &CourseService{repo: repo}
}

func (s *CourseService) Create(ctx context.Context, title, description string) (types.Course, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Course{}, apperr.Invalid("title is required", map[string]string{"title": "required"})
	}
	course, err := s.repo.Create(ctx, types.Course{Title: title, Description: strings.TrimSpace(description)})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Course{}, apperr.AlreadyExists("course already exists")
		}
		return types.Course{}, apperr.Internal("failed to create course", err)
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context) ([]types.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list courses", err)
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id int64) (types.Course, error) {
	course, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return types.Course{}, lookupError(err, "course not found")
	}
	return course, nil
}
