package user_test

import (
	"context"
	"testing"

	"github.com/kozihq/kozi/core"
	"github.com/kozihq/kozi/core/user"
	emailsvc "github.com/kozihq/kozi/services/email"
	dummydb "github.com/kozihq/kozi/storage/database/dummy"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatal(msg, args) }

func setup(t *testing.T) *user.Service {
	conf := core.NewTestConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	core.ParseEmailTemplates(testLogger{t}, conf)
	return user.NewService(dummydb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf)
}

func TestService_Create(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@some.test",
		Password: "LePass123",
		Roles:    user.StudentRoles,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !usr.IsActive {
		t.Error("new accounts must be active")
	}
	if usr.Theme != user.ThemeLight {
		t.Errorf("new accounts default to the light theme; got %q", usr.Theme)
	}
	if err = usr.CheckPassword("LePass123"); err != nil {
		t.Error("password hash mismatch")
	}

	// uniqueness violations come back as field errors
	err = svc.CheckUniqueness("awesome", "other@some.test")
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckUniqueness() error = %T; want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "username" {
		t.Errorf("CheckUniqueness() fields = %+v; want a username error", vErr.Fields)
	}
}

func TestService_ToggleTheme(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@some.test",
		Password: "LePass123",
		Roles:    user.StudentRoles,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	toggled, err := svc.ToggleTheme(ctx, usr.ID)
	if err != nil {
		t.Fatalf("ToggleTheme() failed: %v", err)
	}
	if toggled.Theme != user.ThemeDark {
		t.Errorf("theme = %q; want %q", toggled.Theme, user.ThemeDark)
	}

	// toggling twice restores the original value
	restored, err := svc.ToggleTheme(ctx, usr.ID)
	if err != nil {
		t.Fatalf("ToggleTheme() failed: %v", err)
	}
	if restored.Theme != usr.Theme {
		t.Errorf("theme = %q; want the original %q", restored.Theme, usr.Theme)
	}

	if _, err = svc.SetTheme(ctx, usr.ID, user.ThemeDark); err != nil {
		t.Fatalf("SetTheme() failed: %v", err)
	}
	got, _ := svc.GetByID(ctx, usr.ID)
	if got.Theme != user.ThemeDark {
		t.Errorf("theme = %q; want %q", got.Theme, user.ThemeDark)
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@some.test",
		Password: "LePass123",
		Roles:    user.StudentRoles,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	emailsvc.ClearSentMessages()
	if err = svc.RequestPasswordReset(ctx, usr.Email); err != nil {
		t.Fatalf("RequestPasswordReset() failed: %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d reset emails; want 1", len(emailsvc.SentMessages))
	}

	data, ok := emailsvc.SentMessages[0].TemplateData.(struct {
		Username string
		UID      string
		Token    string
	})
	if !ok {
		t.Fatalf("unexpected template data %T", emailsvc.SentMessages[0].TemplateData)
	}

	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             data.UID,
		Token:           data.Token,
		Password:        "NewPass456",
		PasswordConfirm: "NewPass456",
	})
	if err != nil {
		t.Fatalf("ResetPassword() failed: %v", err)
	}

	refreshed, _ := svc.GetByID(ctx, usr.ID)
	if err = refreshed.CheckPassword("NewPass456"); err != nil {
		t.Error("new password was not set")
	}

	// a used or tampered token is rejected
	err = svc.ResetPassword(ctx, user.ResetUserPassword{
		UID:             data.UID,
		Token:           data.Token,
		Password:        "Another789",
		PasswordConfirm: "Another789",
	})
	if err == nil {
		t.Error("ResetPassword() must reject a token issued for the old password")
	}
}
