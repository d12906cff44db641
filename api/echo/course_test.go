package echoapi

import (
	"net/http"
	"testing"

	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/user"
)

func Test_courseApi_query(t *testing.T) {
	server, deps := initTestServer(t)

	python := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")
	web := createTestCourse(t, deps.courseSvc, "Web Development", "Build modern web applications", "Programming")
	data := createTestCourse(t, deps.courseSvc, "Data Science Fundamentals", "Analyze and visualize data", "Data Science")

	tests := []httpTest{
		{
			name:     "no filter returns the whole catalog",
			path:     "/v1/courses",
			wantCode: http.StatusOK,
			wantData: marchallList(t, python, web, data),
		},
		{
			name:     "search matches the title",
			path:     "/v1/courses?search=python",
			wantCode: http.StatusOK,
			wantData: marchallList(t, python),
		},
		{
			name:     "search matches the description",
			path:     "/v1/courses?search=visualize",
			wantCode: http.StatusOK,
			wantData: marchallList(t, data),
		},
		{
			name:     "search matches the category",
			path:     "/v1/courses?search=data",
			wantCode: http.StatusOK,
			wantData: marchallList(t, data),
		},
		{
			name:     "category filter is exact",
			path:     "/v1/courses?category=Programming",
			wantCode: http.StatusOK,
			wantData: marchallList(t, python, web),
		},
		{
			name:     "search and category combine",
			path:     "/v1/courses?search=web&category=Programming",
			wantCode: http.StatusOK,
			wantData: marchallList(t, web),
		},
		{
			name:     "disjoint filter matches nothing",
			path:     "/v1/courses?search=python&category=Data+Science",
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_retrieve(t *testing.T) {
	server, deps := initTestServer(t)

	crs := createTestCourse(t, deps.courseSvc, "Python Programming", "Learn Python from scratch", "Programming")
	cnt1, err := deps.courseSvc.AddContent(reqCtx(), crs.ID, course.NewContent{
		Title:       "Introduction",
		ContentType: course.ContentVideo,
		ContentURL:  "https://videos.kozi.test/python/intro",
		Duration:    "10:24",
		Sequence:    1,
	})
	if err != nil {
		t.Fatalf("adding content failed: %v", err)
	}
	cnt2, err := deps.courseSvc.AddContent(reqCtx(), crs.ID, course.NewContent{
		Title:       "Variables",
		ContentType: course.ContentVideo,
		ContentURL:  "https://videos.kozi.test/python/variables",
		Duration:    "15:02",
		Sequence:    2,
	})
	if err != nil {
		t.Fatalf("adding content failed: %v", err)
	}

	tests := []httpTest{
		{
			name:     "existing course with ordered contents",
			path:     "/v1/courses/" + crs.ID,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, CourseDetailResponse{Course: crs, Contents: []course.Content{cnt1, cnt2}}),
		},
		{
			name:     "unknown course",
			path:     "/v1/courses/nope",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_create(t *testing.T) {
	server, deps := initTestServer(t)

	admin := createTestUser(t, deps.userSvc, "The Boss", "theboss", "boss@kozi.test", "LePass123", user.AdminRoles)
	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)

	body := []byte(`{"title": "Cloud Computing", "description": "AWS, GCP and friends", "category": "Cloud"}`)

	tests := []httpTest{
		{
			name:     "admin creates a course",
			token:    getToken(t, admin),
			body:     body,
			wantCode: http.StatusCreated,
		},
		{
			name:     "defaults are rejected when required fields missing",
			token:    getToken(t, admin),
			body:     []byte(`{"title": "No Description"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "student is forbidden",
			token:    getToken(t, student),
			body:     body,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "missing token is rejected",
			body:     body,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tt.token, tt.body)
			server.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v; body = %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// defaults applied on create
	crs, err := deps.courseSvc.Filter(reqCtx(), &course.QueryFilter{Category: "Cloud"})
	if err != nil || len(crs) != 1 {
		t.Fatalf("created course not found: %v", err)
	}
	if crs[0].Instructor != "Admin" || crs[0].Duration != 40 || crs[0].Level != course.LevelBeginner {
		t.Errorf("defaults not applied: %+v", crs[0])
	}
}
