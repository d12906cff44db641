package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/kozihq/kozi/core"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		QueryAllCourses(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error)
		// FilterCourses applies AND operation on available QueryFilter fields;
		// see QueryFilter.Matches for the Search semantics.
		FilterCourses(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Course, error)
		LatestCourses(ctx context.Context, limit int) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		CountCourses(ctx context.Context) (int, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) error

		CreateContent(ctx context.Context, cnt Content) (Content, error)
		QueryCourseContents(ctx context.Context, courseID string) ([]Content, error) // ordered by sequence
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{
		repo: repo,
		conf: conf,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		Category:    nc.Category,
		Instructor:  nc.Instructor,
		Duration:    nc.Duration,
		Level:       nc.Level,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if crs.Instructor == "" {
		crs.Instructor = "Admin"
	}
	if crs.Duration == 0 {
		crs.Duration = 40
	}
	if crs.Level == "" {
		crs.Level = LevelBeginner
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx, ordering...)
}

func (svc *Service) Filter(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Course, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllCourses(ctx, ordering...)
	}
	return svc.repo.FilterCourses(ctx, *filter, ordering...)
}

// Featured returns the latest courses for the landing page.
func (svc *Service) Featured(ctx context.Context, limit int) ([]Course, error) {
	return svc.repo.LatestCourses(ctx, limit)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountCourses(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	if uc.Instructor != "" {
		crs.Instructor = uc.Instructor
	}
	if uc.Duration != 0 {
		crs.Duration = uc.Duration
	}
	if uc.Level != "" {
		crs.Level = uc.Level
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

// AddContent attaches a content item to an existing course.
func (svc *Service) AddContent(ctx context.Context, courseID string, nc NewContent) (Content, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Content{}, err
	}
	cnt := Content{
		CourseID:    courseID,
		Title:       nc.Title,
		ContentType: nc.ContentType,
		ContentURL:  nc.ContentURL,
		Duration:    nc.Duration,
		Sequence:    nc.Sequence,
	}
	return svc.repo.CreateContent(ctx, cnt)
}

// Contents returns a course's content items in sequence order.
func (svc *Service) Contents(ctx context.Context, courseID string) ([]Content, error) {
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourseContents(ctx, courseID)
}
