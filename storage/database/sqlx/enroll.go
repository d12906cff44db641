package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/enroll"
)

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

type enrollmentRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	CourseID   string    `db:"course_id"`
	Progress   int       `db:"progress"`
	Completed  bool      `db:"completed"`
	EnrolledAt time.Time `db:"enrolled_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func newEnrollmentRow(enr enroll.Enrollment) enrollmentRow {
	return enrollmentRow(enr)
}

func (row enrollmentRow) toEnrollment() enroll.Enrollment {
	return enroll.Enrollment(row)
}

// enrolledCourseRow flattens the enrollments-courses join.
type enrolledCourseRow struct {
	enrollmentRow
	CourseTitle       string    `db:"course_title"`
	CourseDescription string    `db:"course_description"`
	CourseCategory    string    `db:"course_category"`
	CourseInstructor  string    `db:"course_instructor"`
	CourseDuration    int       `db:"course_duration"`
	CourseLevel       string    `db:"course_level"`
	CourseCreatedAt   time.Time `db:"course_created_at"`
	CourseUpdatedAt   time.Time `db:"course_updated_at"`
}

func (row enrolledCourseRow) toEnrolledCourse() enroll.EnrolledCourse {
	return enroll.EnrolledCourse{
		Enrollment: row.enrollmentRow.toEnrollment(),
		Course: course.Course{
			ID:          row.CourseID,
			Title:       row.CourseTitle,
			Description: row.CourseDescription,
			Category:    row.CourseCategory,
			Instructor:  row.CourseInstructor,
			Duration:    row.CourseDuration,
			Level:       row.CourseLevel,
			CreatedAt:   row.CourseCreatedAt,
			UpdatedAt:   row.CourseUpdatedAt,
		},
	}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	row := newEnrollmentRow(enr)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, progress, completed, enrolled_at, updated_at)
		VALUES (:id, :user_id, :course_id, :progress, :completed, :enrolled_at, :updated_at)`,
		row,
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) getEnrollment(ctx context.Context, query string, args ...interface{}) (enroll.Enrollment, error) {
	var row enrollmentRow
	if err := repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return enroll.Enrollment{}, enroll.ErrNotFound
		}
		return enroll.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.toEnrollment(), nil
}

func (repo enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enroll.Enrollment, error) {
	return repo.getEnrollment(ctx, "SELECT * FROM enrollments WHERE id = ?", id)
}

func (repo enrollmentRepository) GetUserCourseEnrollment(ctx context.Context, userID, courseID string) (enroll.Enrollment, error) {
	return repo.getEnrollment(ctx,
		"SELECT * FROM enrollments WHERE user_id = ? AND course_id = ?", userID, courseID)
}

func (repo enrollmentRepository) QueryUserEnrollments(ctx context.Context, userID string) ([]enroll.EnrolledCourse, error) {
	var rows []enrolledCourseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT e.id, e.user_id, e.course_id, e.progress, e.completed, e.enrolled_at, e.updated_at,
		       c.title AS course_title, c.description AS course_description, c.category AS course_category,
		       c.instructor AS course_instructor, c.duration AS course_duration, c.level AS course_level,
		       c.created_at AS course_created_at, c.updated_at AS course_updated_at
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying user enrollments")
	}
	enrolled := make([]enroll.EnrolledCourse, 0, len(rows))
	for _, row := range rows {
		enrolled = append(enrolled, row.toEnrolledCourse())
	}
	return enrolled, nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	row := newEnrollmentRow(enr)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE enrollments
		SET progress = :progress, completed = :completed, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return enr, nil
}

func (repo enrollmentRepository) CountEnrollments(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM enrollments"); err != nil {
		return 0, errors.Wrap(err, "counting enrollments")
	}
	return count, nil
}

func (repo enrollmentRepository) CountEnrollmentsByCategory(ctx context.Context) ([]enroll.CategoryCount, error) {
	var counts []enroll.CategoryCount
	err := repo.db.SelectContext(ctx, &counts, `
		SELECT c.category AS category, COUNT(*) AS count
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		GROUP BY c.category
		ORDER BY count DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "counting enrollments by category")
	}
	return counts, nil
}

func (repo enrollmentRepository) DeleteEnrollmentsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM enrollments WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting enrollments")
	}
	return nil
}
