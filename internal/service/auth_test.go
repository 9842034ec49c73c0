package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"log/slog"

	"github.com/sakif/rulesmith/internal/apperror"
	"github.com/sakif/rulesmith/internal/auth"
	"github.com/sakif/rulesmith/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// A hand-written fake (not a mock framework) keeps these tests dependency
// free and easy to read.
type fakeUserRepo struct {
	users  []model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) Append(_ context.Context, user *model.User) {
	if user.ID == "" {
		f.nextID++
		user.ID = fmt.Sprintf("user-fake-%d", f.nextID)
	}
	if user.CreatedAt == "" {
		user.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	f.users = append(f.users, *user)
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, bool) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, true
		}
	}
	return nil, false
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, bool) {
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, true
		}
	}
	return nil, false
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, bool) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, true
		}
	}
	return nil, false
}

func testServiceLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService returns an AuthService wired with fake dependencies.
// bcrypt cost 4 keeps hashing fast.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	ps := auth.NewPasswordServiceForTest(4)

	return NewAuthService(repo, ts, ps, testServiceLogger())
}

// =========================================================================
// Register TESTS
// =========================================================================

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.Token == "" {
		t.Error("Register() returned empty token")
	}
	if result.User.ID == "" {
		t.Error("Register() user has no ID")
	}
	if result.User.Username != "alice" {
		t.Errorf("User.Username = %q, want %q", result.User.Username, "alice")
	}
	if result.User.CreatedAt == "" {
		t.Error("Register() user has no CreatedAt")
	}

	// The stored record must hold a bcrypt hash, never the plaintext
	stored, ok := repo.FindByEmail(context.Background(), "a@x.com")
	if !ok {
		t.Fatal("registered user not found in repository")
	}
	if stored.Password == "secret1" {
		t.Error("password stored in plaintext")
	}
	if stored.Password == "" {
		t.Error("password hash is empty")
	}
}

func TestRegister_MissingFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"no username", "", "a@x.com", "secret1"},
		{"no email", "alice", "", "secret1"},
		{"no password", "alice", "a@x.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.email, tc.password)
			if !errorsIsValidation(err) {
				t.Errorf("Register() error = %v, want validation error", err)
			}
		})
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	for _, email := range []string{"not-an-email", "a@b", "a b@x.com", "@x.com"} {
		_, err := svc.Register(context.Background(), "alice", email, "secret1")
		if !errorsIsValidation(err) {
			t.Errorf("Register(email=%q) error = %v, want validation error", email, err)
		}
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "12345")
	if !errorsIsValidation(err) {
		t.Errorf("Register() error = %v, want validation error for a 5-char password", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Same email, different username
	_, err := svc.Register(context.Background(), "bob", "a@x.com", "secret2")
	if !errorsIsConflict(err) {
		t.Errorf("Register() error = %v, want conflict for duplicate email", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	// Same username, different email
	_, err := svc.Register(context.Background(), "alice", "b@x.com", "secret2")
	if !errorsIsConflict(err) {
		t.Errorf("Register() error = %v, want conflict for duplicate username", err)
	}
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.User.ID != reg.User.ID {
		t.Errorf("Login() user ID = %q, want %q", result.User.ID, reg.User.ID)
	}
}

func TestLogin_TokenDecodesToSameUserID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, _ := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	result, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	ts, _ := auth.NewTokenService("test-secret-at-least-16-chars!!")
	userID, err := ts.Validate(result.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if userID != reg.User.ID {
		t.Errorf("token subject = %q, want %q", userID, reg.User.ID)
	}
}

func TestLogin_WrongPasswordAndUnknownEmailLookIdentical(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, wrongPwErr := svc.Login(context.Background(), "a@x.com", "wrong")
	_, noUserErr := svc.Login(context.Background(), "ghost@x.com", "whatever")

	if !errorsIsUnauthorized(wrongPwErr) {
		t.Fatalf("wrong password error = %v, want unauthorized", wrongPwErr)
	}
	if !errorsIsUnauthorized(noUserErr) {
		t.Fatalf("unknown email error = %v, want unauthorized", noUserErr)
	}

	// Identical messages — a difference would leak which emails exist
	if wrongPwErr.Error() != noUserErr.Error() {
		t.Errorf("error messages differ: %q vs %q — user-existence leak", wrongPwErr.Error(), noUserErr.Error())
	}
}

// =========================================================================
// GetUserByID TESTS
// =========================================================================

func TestGetUserByID_Found(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, _ := svc.Register(context.Background(), "alice", "a@x.com", "secret1")

	user, err := svc.GetUserByID(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("user.Username = %q, want %q", user.Username, "alice")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.GetUserByID(context.Background(), "non-existent-id")
	if err == nil {
		t.Fatal("GetUserByID() should return error for unknown ID")
	}
}

func TestGetUserByID_EmptyID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	_, err := svc.GetUserByID(context.Background(), "")
	if err == nil {
		t.Fatal("GetUserByID() should return error for empty ID")
	}
}

// =========================================================================
// error predicates shared by the tests in this package
// =========================================================================

func errorsIsValidation(err error) bool   { return errors.Is(err, apperror.ErrValidation) }
func errorsIsConflict(err error) bool     { return errors.Is(err, apperror.ErrConflict) }
func errorsIsUnauthorized(err error) bool { return errors.Is(err, apperror.ErrUnauthorized) }
