package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kozihq/kozi/core"
	"github.com/kozihq/kozi/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

// query returns all courses, most recently created first.
func (repo *courseRepository) query() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, ordering ...core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *courseRepository) FilterCourses(ctx context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var filtered []course.Course
	for _, crs := range repo.query() {
		if filter.Matches(crs) {
			filtered = append(filtered, crs)
		}
	}
	return filtered, nil
}

func (repo *courseRepository) LatestCourses(ctx context.Context, limit int) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.query()
	if limit > 0 && len(courses) > limit {
		courses = courses[:limit]
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) CountCourses(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
		delete(repo.db.contents, id)
	}
	return nil
}

func (repo *courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if cnt.ID == "" {
		cnt.ID = uuid.New().String()
	}
	repo.db.contents[cnt.CourseID] = append(repo.db.contents[cnt.CourseID], &cnt)
	return cnt, nil
}

func (repo *courseRepository) QueryCourseContents(ctx context.Context, courseID string) ([]course.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	contents := make([]course.Content, 0, len(repo.db.contents[courseID]))
	for _, cnt := range repo.db.contents[courseID] {
		contents = append(contents, *cnt)
	}
	sort.Slice(contents, func(i, j int) bool { return contents[i].Sequence < contents[j].Sequence })
	return contents, nil
}
