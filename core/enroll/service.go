package enroll

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/kozihq/kozi/core"
	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("enrollment not found")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
)

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string) (Enrollment, error)
		GetUserCourseEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
		// QueryUserEnrollments returns the user's enrollments joined with
		// their courses, most recent first.
		QueryUserEnrollments(ctx context.Context, userID string) ([]EnrolledCourse, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		CountEnrollments(ctx context.Context) (int, error)
		CountEnrollmentsByCategory(ctx context.Context) ([]CategoryCount, error)
		DeleteEnrollmentsByID(ctx context.Context, ids ...string) error
	}

	// CourseGetter is the slice of course.Service the enrollment flow needs.
	CourseGetter interface {
		GetByID(ctx context.Context, id string) (course.Course, error)
		Count(ctx context.Context) (int, error)
	}

	// UserGetter is the slice of user.Service the enrollment flow needs.
	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
		Count(ctx context.Context) (int, error)
	}

	Service struct {
		repo      Repository
		courseSvc CourseGetter
		userSvc   UserGetter
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

func NewService(repo Repository, courseSvc CourseGetter, userSvc UserGetter, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:      repo,
		courseSvc: courseSvc,
		userSvc:   userSvc,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

// Enroll enrolls the user in the course at 0% progress. Enrolling is
// idempotent: re-enrolling returns the existing enrollment untouched.
func (svc *Service) Enroll(ctx context.Context, userID, courseID string) (Enrollment, error) {
	crs, err := svc.courseSvc.GetByID(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}

	if enr, err := svc.repo.GetUserCourseEnrollment(ctx, userID, courseID); err == nil {
		return enr, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Progress:   0,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Enrollment{}, err
	}
	svc.sendEnrollmentEmail(ctx, enr, crs)
	return enr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollmentByID(ctx, id)
}

// ListByUser returns the user's enrollments joined with their courses.
func (svc *Service) ListByUser(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	return svc.repo.QueryUserEnrollments(ctx, userID)
}

// SetProgress persists a new progress percentage and returns the stored
// enrollment; callers must display the returned (acknowledged) value only.
// Out-of-range values are rejected, leaving the stored value unchanged.
// Progress 100 marks the enrollment completed; anything lower clears it.
func (svc *Service) SetProgress(ctx context.Context, id string, progress int) (Enrollment, error) {
	if progress < 0 || progress > 100 {
		return Enrollment{}, core.NewValidationError(
			ErrProgressOutOfRange,
			core.FieldError{Field: "progress", Error: ErrProgressOutOfRange.Error()},
		)
	}

	enr, err := svc.repo.GetEnrollmentByID(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	enr.Progress = progress
	enr.Completed = progress == 100
	enr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountEnrollments(ctx)
}

// Stats assembles the admin dashboard counters and the per-category
// enrollment counts feeding the charts.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := svc.userSvc.Count(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting users")
	}
	courses, err := svc.courseSvc.Count(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting courses")
	}
	enrollments, err := svc.repo.CountEnrollments(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting enrollments")
	}
	byCategory, err := svc.repo.CountEnrollmentsByCategory(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting enrollments by category")
	}
	return Stats{
		Users:                 users,
		Courses:               courses,
		Enrollments:           enrollments,
		EnrollmentsByCategory: byCategory,
	}, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteEnrollmentsByID(ctx, ids...)
}

func (svc *Service) sendEnrollmentEmail(ctx context.Context, enr Enrollment, crs course.Course) {
	usr, err := svc.userSvc.GetByID(ctx, enr.UserID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Enrollment confirmed",
		TemplateName: "enrollment",
		TemplateData: struct {
			Username    string
			CourseTitle string
		}{usr.Username, crs.Title},
	})
}
