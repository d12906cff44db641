package dummydb

import (
	"sync"

	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/enroll"
	"github.com/kozihq/kozi/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
		enroll *enrollmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table    map[string]*course.Course
		contents map[string][]*course.Content // keyed by course ID
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enroll.Enrollment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			table:    make(map[string]*course.Course),
			contents: make(map[string][]*course.Content),
		},
		enroll: &enrollmentTable{table: make(map[string]*enroll.Enrollment)},
	}
	return db, nil
}
