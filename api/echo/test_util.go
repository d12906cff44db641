package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/kozihq/kozi/core"
	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/enroll"
	"github.com/kozihq/kozi/core/user"
	emailsvc "github.com/kozihq/kozi/services/email"
	dummydb "github.com/kozihq/kozi/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testDeps struct {
	conf      *core.Config
	userSvc   *user.Service
	courseSvc *course.Service
	enrollSvc *enroll.Service
}

type stdLogger struct {
	std *log.Logger
}

func (l stdLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.std.Fatalln(msg, args) }

func initTestServer(t *testing.T) (Server, testDeps) {
	conf := core.NewTestConfig()
	logger := stdLogger{std: log.New(os.Stdout, "TEST : ", log.LstdFlags)}

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(dummydb.NewUserRepository(db), mailSvc, conf)
	crsSvc := course.NewService(dummydb.NewCourseRepository(db), conf)
	enrSvc := enroll.NewService(dummydb.NewEnrollmentRepository(db), crsSvc, usrSvc, mailSvc, conf)

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(logger, conf)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
		EnrollSvc:  enrSvc,
		Validate:   validate,
		Translator: translator,
	})
	return server, testDeps{conf: conf, userSvc: usrSvc, courseSvc: crsSvc, enrollSvc: enrSvc}
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func createTestUser(t *testing.T, svc *user.Service, name, uname, email, pwd string, roles []string) user.User {
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:     name,
		Username: uname,
		Email:    email,
		Password: pwd,
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("createTestUser() failed: %v", err)
	}
	return usr
}

func createTestCourse(t *testing.T, svc *course.Service, title, description, category string) course.Course {
	crs, err := svc.Create(context.Background(), course.NewCourse{
		Title:       title,
		Description: description,
		Category:    category,
	})
	if err != nil {
		t.Fatalf("createTestCourse() failed: %v", err)
	}
	return crs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newFormRequest(method, path, token, form string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func reqCtx() context.Context {
	return context.Background()
}

func jsonUnmarshal(t *testing.T, data []byte, obj interface{}) error {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Logf("jsonUnmarshal() failed: %v", err)
		return err
	}
	return nil
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
