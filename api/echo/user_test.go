package echoapi

import (
	"net/http"
	"testing"

	"github.com/kozihq/kozi/core/user"
)

func Test_userApi_login(t *testing.T) {
	server, deps := initTestServer(t)

	usr := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)

	var inactive user.User
	{
		inactive = createTestUser(t, deps.userSvc, "Lazy Bone", "lazybone", "lazy@bone.test", "LePass123", user.StudentRoles)
		isActive := false
		var err error
		inactive, err = deps.userSvc.Update(reqCtx(), inactive.ID, user.UpdateUser{
			Name:     inactive.Name,
			Username: inactive.Username,
			Email:    inactive.Email,
			IsActive: &isActive,
		})
		if err != nil {
			t.Fatalf("deactivating user failed: %v", err)
		}
	}

	tests := []httpTest{
		{
			name:     "login with username",
			body:     []byte(`{"username": "awesome", "password": "LePass123"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "login with email",
			body:     []byte(`{"username": "awe@some.test", "password": "LePass123"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password fails",
			body:     []byte(`{"username": "awesome", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user fails",
			body:     []byte(`{"username": "ghost", "password": "LePass123"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account is rejected",
			body:     []byte(`{"username": "lazybone", "password": "LePass123"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name:     "missing fields fail validation",
			body:     []byte(`{"username": "awesome"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password is a required field"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			server.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var res LoginResponse
				if err := jsonUnmarshal(t, rec.Body.Bytes(), &res); err != nil || res.Token == "" {
					t.Errorf("failed! no token in response: %v", rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
	_ = usr
}

func Test_userApi_register(t *testing.T) {
	server, deps := initTestServer(t)

	body := []byte(`{
		"name": "New Student",
		"username": "student1",
		"email": "student1@kozi.test",
		"password": "Str0ngEnough!",
		"password_confirm": "Str0ngEnough!"
	}`)
	req, rec := newRequest(http.MethodPost, "/v1/users/register", body)
	server.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, http.StatusCreated, rec.Body.String())
	}

	usr, err := deps.userSvc.GetByUsername(reqCtx(), "student1")
	if err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if !usr.IsStudent() || usr.IsAdmin() {
		t.Errorf("self-registered account must be a student; roles = %v", usr.Roles)
	}
	if !usr.IsActive {
		t.Error("self-registered account must be active")
	}
	if usr.Theme != user.ThemeLight {
		t.Errorf("new accounts default to the light theme; got %q", usr.Theme)
	}

	// duplicate username is rejected with a field error
	req, rec = newRequest(http.MethodPost, "/v1/users/register", body)
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_userApi_me(t *testing.T) {
	server, deps := initTestServer(t)

	usr := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name:     "authed user sees their own profile",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, usr),
		},
		{
			name:     "missing token is rejected",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_theme(t *testing.T) {
	server, deps := initTestServer(t)

	usr := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	token := getToken(t, usr)

	set := func(t *testing.T, body string, wantCode int) user.User {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/me/theme", token, []byte(body))
		server.ServeHTTP(rec, req)
		if rec.Code != wantCode {
			t.Fatalf("failed! code = %v; wantCode %v; body = %v", rec.Code, wantCode, rec.Body.String())
		}
		var res user.User
		_ = jsonUnmarshal(t, rec.Body.Bytes(), &res)
		return res
	}
	toggle := func(t *testing.T) user.User {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/me/theme-toggle", token)
		server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var res user.User
		_ = jsonUnmarshal(t, rec.Body.Bytes(), &res)
		return res
	}

	if res := set(t, `{"theme": "dark"}`, http.StatusOK); res.Theme != user.ThemeDark {
		t.Errorf("theme = %q; want %q", res.Theme, user.ThemeDark)
	}

	// invalid values are rejected, stored value untouched
	set(t, `{"theme": "sepia"}`, http.StatusBadRequest)
	if got, _ := deps.userSvc.GetByID(reqCtx(), usr.ID); got.Theme != user.ThemeDark {
		t.Errorf("rejected update must not change the theme; got %q", got.Theme)
	}

	// toggling twice restores the original value
	if res := toggle(t); res.Theme != user.ThemeLight {
		t.Errorf("theme = %q; want %q", res.Theme, user.ThemeLight)
	}
	if res := toggle(t); res.Theme != user.ThemeDark {
		t.Errorf("theme = %q; want %q", res.Theme, user.ThemeDark)
	}
}

func Test_userApi_query(t *testing.T) {
	server, deps := initTestServer(t)

	admin := createTestUser(t, deps.userSvc, "The Boss", "theboss", "boss@kozi.test", "LePass123", user.AdminRoles)
	student := createTestUser(t, deps.userSvc, "Awe Some", "awesome", "awe@some.test", "LePass123", user.StudentRoles)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	tests := []httpTest{
		{
			name:     "admin lists all users",
			path:     "/v1/users",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, admin, student),
		},
		{
			name:     "search filters by name",
			path:     "/v1/users?search=awe",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, student),
		},
		{
			name:     "role filter",
			path:     "/v1/users?role=admin:",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, admin),
		},
		{
			name:     "student is forbidden",
			path:     "/v1/users",
			token:    studentToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "missing token is rejected",
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
