package enroll

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kozihq/kozi/core/course"
)

// Enrollment associates a user with a course and carries the completion
// percentage the server last acknowledged.
type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	Progress   int       `json:"progress"` // 0-100
	Completed  bool      `json:"completed"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

// EnrolledCourse is an Enrollment joined with its Course, as shown on the
// dashboard and my-courses pages.
type EnrolledCourse struct {
	Enrollment
	Course course.Course `json:"course"`
}

// ProgressUpdate is the progress-sync payload. It binds from both JSON and
// `progress=<integer>` form-urlencoded bodies.
type ProgressUpdate struct {
	Progress int `json:"progress" form:"progress" validate:"min=0,max=100"`
}

func (pu *ProgressUpdate) Validate(validate *validator.Validate) error {
	return validate.Struct(pu)
}

// CategoryCount is a chart datapoint: enrollments per course category.
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}

// Stats backs the admin dashboard counters and charts.
type Stats struct {
	Users                 int             `json:"users"`
	Courses               int             `json:"courses"`
	Enrollments           int             `json:"enrollments"`
	EnrollmentsByCategory []CategoryCount `json:"enrollments_by_category"`
}
