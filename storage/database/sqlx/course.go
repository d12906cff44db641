package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kozihq/kozi/core"
	"github.com/kozihq/kozi/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Instructor  string    `db:"instructor"`
	Duration    int       `db:"duration"`
	Level       string    `db:"level"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func newCourseRow(crs course.Course) courseRow {
	return courseRow(crs)
}

func (row courseRow) toCourse() course.Course {
	return course.Course(row)
}

func toCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses
}

type contentRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	ContentType string      `db:"content_type"`
	ContentURL  string      `db:"content_url"`
	Duration    null.String `db:"duration"`
	Sequence    int         `db:"sequence"`
}

func newContentRow(cnt course.Content) contentRow {
	return contentRow{
		ID:          cnt.ID,
		CourseID:    cnt.CourseID,
		Title:       cnt.Title,
		ContentType: cnt.ContentType,
		ContentURL:  cnt.ContentURL,
		Duration:    null.NewString(cnt.Duration, cnt.Duration != ""),
		Sequence:    cnt.Sequence,
	}
}

func (row contentRow) toContent() course.Content {
	return course.Content{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		ContentType: row.ContentType,
		ContentURL:  row.ContentURL,
		Duration:    row.Duration.String,
		Sequence:    row.Sequence,
	}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	row := newCourseRow(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO courses (id, title, description, category, instructor, duration, level, created_at, updated_at)
		VALUES (:id, :title, :description, :category, :instructor, :duration, :level, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM courses WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse(), nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context, ordering ...core.DBOrdering) ([]course.Course, error) {
	query := "SELECT * FROM courses" + orderingClause(ordering, "created_at DESC")
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return toCourses(rows), nil
}

func (repo courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)")
		args = append(args, like, like, like)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Level != "" {
		where = append(where, "level = ?")
		args = append(args, filter.Level)
	}

	query := "SELECT * FROM courses"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += orderingClause(ordering, "created_at DESC")

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering courses")
	}
	return toCourses(rows), nil
}

func (repo courseRepository) LatestCourses(ctx context.Context, limit int) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM courses ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying latest courses")
	}
	return toCourses(rows), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := newCourseRow(crs)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE courses
		SET title = :title, description = :description, category = :category,
		    instructor = :instructor, duration = :duration, level = :level, updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) CountCourses(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM courses"); err != nil {
		return 0, errors.Wrap(err, "counting courses")
	}
	return count, nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM courses WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	if cnt.ID == "" {
		cnt.ID = uuid.New().String()
	}
	row := newContentRow(cnt)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO contents (id, course_id, title, content_type, content_url, duration, sequence)
		VALUES (:id, :course_id, :title, :content_type, :content_url, :duration, :sequence)`,
		row,
	)
	if err != nil {
		return course.Content{}, errors.Wrap(err, "creating content")
	}
	return cnt, nil
}

func (repo courseRepository) QueryCourseContents(ctx context.Context, courseID string) ([]course.Content, error) {
	var rows []contentRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM contents WHERE course_id = ? ORDER BY sequence", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course contents")
	}
	contents := make([]course.Content, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, row.toContent())
	}
	return contents, nil
}
