package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"mindwell-backend/internal/shared/auth"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72

	googleUsernamePrefix = "google:"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct {
	Repo Repo

	hash  func(string) (string, error)
	check func(hash, password string) bool
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, hash: auth.HashPassword, check: auth.CheckPassword}
}

// SignUp creates a local account with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, username, password string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return User{}, fmt.Errorf("%w: username must be %d-%d characters", ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if strings.HasPrefix(strings.ToLower(username), googleUsernamePrefix) {
		return User{}, fmt.Errorf("%w: username is reserved", ErrInvalidInput)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return User{}, fmt.Errorf("%w: password is too long", ErrInvalidInput)
	}

	if _, err := s.Repo.GetByUsername(ctx, username); err == nil {
		return User{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Provider:     ProviderLocal,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

// Login verifies credentials. Unknown users and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.check("", password)
		return User{}, ErrInvalidCredentials
	}
	user, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.check("", password)
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.Provider != ProviderLocal || !s.check(user.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromGoogle returns the account tied to a Google subject, creating it on first sign-in.
func (s *Service) UpsertFromGoogle(ctx context.Context, subject, email string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return User{}, fmt.Errorf("%w: google subject is required", ErrInvalidInput)
	}
	username := googleUsernamePrefix + subject
	user, err := s.Repo.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	user = User{
		ID:       uuid.NewString(),
		Username: username,
		Provider: ProviderGoogle,
		Email:    strings.TrimSpace(email),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return s.Repo.GetByUsername(ctx, username)
		}
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// DisplayName is the name shown for a user; Google accounts prefer their email.
func DisplayName(user User) string {
	if user.Provider == ProviderGoogle && user.Email != "" {
		return user.Email
	}
	return user.Username
}
