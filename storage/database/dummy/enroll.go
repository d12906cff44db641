package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kozihq/kozi/core/enroll"
)

type enrollmentRepository struct {
	db      *enrollmentTable
	courses *courseTable
}

var _ enroll.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enroll.Repository {
	return &enrollmentRepository{db: db.enroll, courses: db.course}
}

func (repo *enrollmentRepository) query() []enroll.Enrollment {
	enrs := make([]enroll.Enrollment, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		enrs = append(enrs, *e)
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].EnrolledAt.After(enrs[j].EnrolledAt) })
	return enrs
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[id]; ok {
		return *enr, nil
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollmentRepository) GetUserCourseEnrollment(ctx context.Context, userID, courseID string) (enroll.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.query() {
		if enr.UserID == userID && enr.CourseID == courseID {
			return enr, nil
		}
	}
	return enroll.Enrollment{}, enroll.ErrNotFound
}

func (repo *enrollmentRepository) QueryUserEnrollments(ctx context.Context, userID string) ([]enroll.EnrolledCourse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	var enrolled []enroll.EnrolledCourse
	for _, enr := range repo.query() {
		if enr.UserID != userID {
			continue
		}
		crs, ok := repo.courses.table[enr.CourseID]
		if !ok {
			continue
		}
		enrolled = append(enrolled, enroll.EnrolledCourse{Enrollment: enr, Course: *crs})
	}
	return enrolled, nil
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[enr.ID]; !ok {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	repo.db.table[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) CountEnrollments(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *enrollmentRepository) CountEnrollmentsByCategory(ctx context.Context) ([]enroll.CategoryCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	byCategory := make(map[string]int)
	for _, enr := range repo.db.table {
		if crs, ok := repo.courses.table[enr.CourseID]; ok {
			byCategory[crs.Category]++
		}
	}

	counts := make([]enroll.CategoryCount, 0, len(byCategory))
	for category, count := range byCategory {
		counts = append(counts, enroll.CategoryCount{Category: category, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})
	return counts, nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
