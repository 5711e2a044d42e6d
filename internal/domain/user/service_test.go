package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/acil/er-api/internal/platform/apperr"
	"github.com/acil/er-api/internal/platform/auth"
)

var testSecret = []byte("unit-test-secret")

// -- Mock Repository --

type mockRepo struct {
	users map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.Username] = u
	return nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperr.NotFoundf("user %s", username)
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func addUser(repo *mockRepo, username, password, role string, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	repo.users[username] = &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Role:         role,
		Active:       active,
	}
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, testSecret, time.Hour), repo
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService()
	addUser(repo, "triyaj", "triyaj123", RoleNurse, true)

	token, u, err := svc.Authenticate(context.Background(), "triyaj", "triyaj123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "triyaj" {
		t.Errorf("unexpected user: %+v", u)
	}

	claims, err := auth.ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Role != RoleNurse {
		t.Errorf("expected role %s in token, got %s", RoleNurse, claims.Role)
	}
	if claims.Subject != u.ID.String() {
		t.Errorf("expected subject %s, got %s", u.ID, claims.Subject)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc, repo := newTestService()
	addUser(repo, "triyaj", "triyaj123", RoleNurse, true)
	addUser(repo, "ghost", "ghost123", RoleDoctor, false)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "whatever"},
		{"wrong password", "triyaj", "wrong"},
		{"inactive user", "ghost", "ghost123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(context.Background(), tc.username, tc.password)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != "invalid credentials" {
				t.Errorf("rejection must not leak the reason, got %q", ve.Message)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, username := range []string{"triyaj", "doctor"} {
		u, ok := repo.users[username]
		if !ok {
			t.Fatalf("expected user %s to be seeded", username)
		}
		if !u.Active {
			t.Errorf("expected %s to be active", username)
		}
	}

	// Second run must not touch existing accounts.
	first := repo.users["triyaj"].ID
	if err := svc.Seed(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.users["triyaj"].ID != first {
		t.Error("seed must be idempotent")
	}
}
