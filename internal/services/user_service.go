package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pennypal/internal/auth"
	"pennypal/internal/core"
	"pennypal/internal/storage"
)

// RegisterInput is a password sign-up request.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// UserService manages accounts and profiles.
type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

// Register creates a password account. A taken email is core.ErrDuplicate.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	email := core.NormalizeEmail(in.Email)
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(in.Password); err != nil {
		return core.User{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u := core.User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     name,
		Currency: core.DefaultCurrency,
	}
	if err := (core.ProfileUpdate{Name: &u.Name}).Apply(&u); err != nil {
		return core.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return core.User{}, err
	}
	u.PasswordHash = hash

	created, err := s.users.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("register %s: %w", email, err)
	}
	slog.InfoContext(ctx, "User registered", "user_id", created.ID)
	return created, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// both yield core.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	u, err := s.users.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.ErrUnauthorized
	}
	if err != nil {
		return core.User{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// SignInWithGoogle finds the account linked to the Google subject, links an
// existing account with the same email, or creates a new one.
func (s *UserService) SignInWithGoogle(ctx context.Context, p auth.GoogleProfile) (core.User, error) {
	u, err := s.users.GetUserByGoogleID(ctx, p.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}

	email := core.NormalizeEmail(p.Email)
	u, err = s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		u.GoogleID = p.ID
		if u.AvatarURL == "" {
			u.AvatarURL = p.Picture
		}
		linked, err := s.users.UpdateUser(ctx, u)
		if err != nil {
			return core.User{}, fmt.Errorf("link google account: %w", err)
		}
		slog.InfoContext(ctx, "Linked Google account", "user_id", linked.ID)
		return linked, nil
	case !errors.Is(err, core.ErrNotFound):
		return core.User{}, err
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	created, err := s.users.CreateUser(ctx, core.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		AvatarURL: p.Picture,
		Currency:  core.DefaultCurrency,
		GoogleID:  p.ID,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("create google user: %w", err)
	}
	slog.InfoContext(ctx, "User registered with Google", "user_id", created.ID)
	return created, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (core.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UpdateProfile changes name, avatar_url or currency.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, p core.ProfileUpdate) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if err := p.Apply(&u); err != nil {
		return core.User{}, err
	}
	updated, err := s.users.UpdateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}
