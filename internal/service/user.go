package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"docmanager/internal/model"
	"docmanager/internal/repository"
)

// CreateUserInput is the payload for a new account. Role defaults to model.RoleUser.
type CreateUserInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserInput changes the fields that are set.
type UpdateUserInput struct {
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UserService manages accounts and verifies credentials.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id int64) error
	// Authenticate returns the user when password matches. Any mismatch is ErrAuth.
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	// EnsureAdmin creates an admin account unless the username already exists.
	// It reports whether an account was created.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type userService struct {
	repo repository.UserRepository
	cost int
	// dummyHash is compared against when the username is unknown so both paths cost one bcrypt check.
	dummyHash []byte
}

// NewUserService constructs a new UserService. cost is the bcrypt cost; zero means bcrypt.DefaultCost.
func NewUserService(repo repository.UserRepository, cost int) UserService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unused-password"), cost)
	return &userService{repo: repo, cost: cost, dummyHash: dummy}
}

func (s *userService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", wrap(ErrValidation, err)
	}
	return string(h), nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, wrap(ErrStorage, err)
	}
	return u, nil
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, invalid("username and password are required")
	}
	role := sanitizeText(in.Role)
	if role == "" {
		role = model.RoleUser
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, &model.User{Username: username, PasswordHash: hash, Role: role})
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: username %q is taken", ErrConflict, username)
		}
		return nil, wrap(ErrStorage, err)
	}
	return u, nil
}

func (s *userService) Update(ctx context.Context, id int64, in UpdateUserInput) (*model.User, error) {
	if in.Role == nil && in.Password == nil {
		return nil, invalid("nothing to update")
	}

	if in.Role != nil {
		role := sanitizeText(*in.Role)
		if role == "" {
			return nil, invalid("role must not be empty")
		}
		if err := s.repo.UpdateRole(ctx, id, role); err != nil {
			return nil, s.mapUpdateErr(id, err)
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, invalid("password must not be empty")
		}
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
			return nil, s.mapUpdateErr(id, err)
		}
	}
	return s.Get(ctx, id)
}

func (s *userService) mapUpdateErr(id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return wrap(ErrStorage, err)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return wrap(ErrDeletion, err)
	}
	if !deleted {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, fmt.Errorf("%w: invalid username or password", ErrAuth)
		}
		return nil, wrap(ErrStorage, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrAuth)
	}
	return u, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, wrap(ErrStorage, err)
	}
	if _, err := s.Create(ctx, CreateUserInput{Username: username, Password: password, Role: model.RoleAdmin}); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
