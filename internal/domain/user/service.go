package user

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/acil/er-api/internal/platform/apperr"
	"github.com/acil/er-api/internal/platform/auth"
)

type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
}

func NewService(repo Repository, secret []byte, ttl time.Duration) *Service {
	return &Service{repo: repo, secret: secret, ttl: ttl}
}

// Authenticate checks the credentials and issues a signed token. Unknown
// username, wrong password and deactivated account all produce the same
// answer so the response does not leak which usernames exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, *User, error) {
	invalid := apperr.Validationf("invalid credentials")

	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return "", nil, invalid
	}
	if err != nil {
		return "", nil, err
	}
	if !u.Active {
		return "", nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, invalid
	}
	token, err := auth.IssueToken(s.secret, s.ttl, u.ID.String(), u.Username, u.FullName, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

type seedUser struct {
	username string
	password string
	fullName string
	role     string
}

var defaultUsers = []seedUser{
	{username: "triyaj", password: "triyaj123", fullName: "Triage Nurse", role: RoleNurse},
	{username: "doctor", password: "doctor123", fullName: "Duty Doctor", role: RoleDoctor},
}

// Seed creates the default clinical accounts when they are missing. Safe to
// run on every start.
func (s *Service) Seed(ctx context.Context) error {
	for _, d := range defaultUsers {
		exists, err := s.repo.ExistsByUsername(ctx, d.username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := &User{
			Username:     d.username,
			PasswordHash: string(hash),
			FullName:     d.fullName,
			Role:         d.role,
			Active:       true,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		log.Info().Str("username", d.username).Str("role", d.role).Msg("seeded default user")
	}
	return nil
}
