package echoapi

import (
	"net/http"
	"testing"

	"github.com/kozihq/kozi/core/enroll"
	"github.com/kozihq/kozi/core/user"
)

func Test_enrollmentApi_enroll(t *testing.T) {
	server, deps := initTestServer(t)

	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	token := getToken(t, student)
	crs := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")

	req, rec := newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/enroll", token)
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var enr enroll.Enrollment
	_ = jsonUnmarshal(t, rec.Body.Bytes(), &enr)
	if enr.Progress != 0 || enr.Completed {
		t.Errorf("new enrollments start at 0%% and incomplete; got %+v", enr)
	}

	// re-enrolling returns the existing enrollment untouched
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/"+crs.ID+"/enroll", token)
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusCreated)
	}
	var again enroll.Enrollment
	_ = jsonUnmarshal(t, rec.Body.Bytes(), &again)
	if again.ID != enr.ID {
		t.Errorf("re-enrolling must be idempotent; got a new enrollment %q", again.ID)
	}

	// unknown course
	req, rec = newAuthRequest(http.MethodPost, "/v1/courses/nope/enroll", token)
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "not found"}),
	}, rec)
}

func Test_enrollmentApi_listMine(t *testing.T) {
	server, deps := initTestServer(t)

	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	other := createTestUser(t, deps.userSvc, "Some One", "someone", "some@one.test", "LePass123", user.StudentRoles)
	crs := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")

	enr, err := deps.enrollSvc.Enroll(reqCtx(), student.ID, crs.ID)
	if err != nil {
		t.Fatalf("enrolling failed: %v", err)
	}
	if _, err = deps.enrollSvc.Enroll(reqCtx(), other.ID, crs.ID); err != nil {
		t.Fatalf("enrolling failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "only own enrollments are listed",
			token:    getToken(t, student),
			wantCode: http.StatusOK,
			wantData: marchallList(t, enroll.EnrolledCourse{Enrollment: enr, Course: crs}),
		},
		{
			name:     "missing token is rejected",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/enrollments", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_enrollmentApi_updateProgress(t *testing.T) {
	server, deps := initTestServer(t)

	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	other := createTestUser(t, deps.userSvc, "Some One", "someone", "some@one.test", "LePass123", user.StudentRoles)
	admin := createTestUser(t, deps.userSvc, "The Boss", "theboss", "boss@kozi.test", "LePass123", user.AdminRoles)
	crs := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")

	enr, err := deps.enrollSvc.Enroll(reqCtx(), student.ID, crs.ID)
	if err != nil {
		t.Fatalf("enrolling failed: %v", err)
	}

	storedProgress := func(t *testing.T) int {
		got, err := deps.enrollSvc.GetByID(reqCtx(), enr.ID)
		if err != nil {
			t.Fatalf("getting enrollment failed: %v", err)
		}
		return got.Progress
	}

	t.Run("form-urlencoded update is acknowledged", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, getToken(t, student), "progress=42")
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res enroll.Enrollment
		_ = jsonUnmarshal(t, rec.Body.Bytes(), &res)
		if res.Progress != 42 || res.Completed {
			t.Errorf("acknowledged enrollment = %+v; want progress 42, incomplete", res)
		}
		if got := storedProgress(t); got != 42 {
			t.Errorf("stored progress = %v; want 42", got)
		}
	})

	t.Run("json body works on the v1 route", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/"+enr.ID+"/progress", getToken(t, student), []byte(`{"progress": 58}`))
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		if got := storedProgress(t); got != 58 {
			t.Errorf("stored progress = %v; want 58", got)
		}
	})

	t.Run("100 marks the enrollment completed", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, getToken(t, student), "progress=100")
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var res enroll.Enrollment
		_ = jsonUnmarshal(t, rec.Body.Bytes(), &res)
		if !res.Completed {
			t.Error("enrollment at 100% must be completed")
		}
	})

	t.Run("out-of-range values are rejected and stored value unchanged", func(t *testing.T) {
		for _, form := range []string{"progress=101", "progress=-1"} {
			req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, getToken(t, student), form)
			server.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: code = %v; wantCode %v", form, rec.Code, http.StatusBadRequest)
			}
			if got := storedProgress(t); got != 100 {
				t.Errorf("%s: stored progress = %v; want 100 (unchanged)", form, got)
			}
		}
	})

	t.Run("foreign enrollment reads as not found", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, getToken(t, other), "progress=10")
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		}, rec)
	})

	t.Run("admin may update any enrollment", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, getToken(t, admin), "progress=75")
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		req, rec := newFormRequest(http.MethodPost, "/update_progress/"+enr.ID, "", "progress=10")
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		}, rec)
	})
}

func Test_enrollmentApi_stats(t *testing.T) {
	server, deps := initTestServer(t)

	admin := createTestUser(t, deps.userSvc, "The Boss", "theboss", "boss@kozi.test", "LePass123", user.AdminRoles)
	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	python := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")
	data := createTestCourse(t, deps.courseSvc, "Data Science Fundamentals", "Analyze and visualize data", "Data Science")

	for _, crs := range []string{python.ID, data.ID} {
		if _, err := deps.enrollSvc.Enroll(reqCtx(), student.ID, crs); err != nil {
			t.Fatalf("enrolling failed: %v", err)
		}
	}
	if _, err := deps.enrollSvc.Enroll(reqCtx(), admin.ID, python.ID); err != nil {
		t.Fatalf("enrolling failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "admin sees the dashboard counters",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, enroll.Stats{
				Users:       2,
				Courses:     2,
				Enrollments: 3,
				EnrollmentsByCategory: []enroll.CategoryCount{
					{Category: "Programming", Count: 2},
					{Category: "Data Science", Count: 1},
				},
			}),
		},
		{
			name:     "student is forbidden",
			token:    getToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/admin/stats", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
