package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fallincloud/travelog/internal/domain"
)

// userRepository is the subset of store.UserStore that AuthService requires.
type userRepository interface {
	Create(ctx context.Context, username, email, passwordHash string, role domain.Role) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error)
	CountAdmins(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type AuthService struct {
	users  userRepository
	logger *slog.Logger
}

func NewAuthService(users userRepository, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Login checks the credentials against the stored bcrypt hash and returns the
// user on success.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser resolves a session user id. A stale id resolves to nil, not an error.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers returns every account, oldest first, for the admin user overview.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CanRegister reports whether actor may open the registration page. Once an
// admin account exists, only admins may register further accounts.
func (s *AuthService) CanRegister(ctx context.Context, actor *domain.User) (bool, error) {
	admins, err := s.users.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	return admins == 0 || actor.IsAdmin(), nil
}

// Register validates the input and creates the account. The first user
// registered while no admin exists becomes the admin; everyone after that is
// a viewer.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmPassword string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, ValidationError("username, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ValidationError("invalid email address")
	}
	if password != confirmPassword {
		return nil, ValidationError("passwords do not match")
	}

	existing, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing != nil {
		return nil, ValidationError("username or email already taken")
	}

	role := domain.RoleViewer
	admins, err := s.users.CountAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins == 0 {
		role = domain.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash), role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// EnsureAdmin creates an admin account with the given credentials unless an
// admin already exists. It returns true when an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	admins, err := s.users.CountAdmins(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash), domain.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("admin account created", "user_id", user.ID, "username", user.Username)
	return true, nil
}
