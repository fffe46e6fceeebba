package service

import (
	"errors"
	"time"

	"torneio/app_error"
	"torneio/auth"
	"torneio/metrics"
	"torneio/repository"
	"torneio/utils"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepository *repository.UserRepository
}

func NewUserService(stores *repository.Stores) *UserService {
	return &UserService{userRepository: stores.Users}
}

// UserResponse is the password-free view of an account.
type UserResponse struct {
	Username      string     `json:"username"`
	Role          repository.Role `json:"role"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

func toUserResponse(user *repository.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Login checks the credentials against the user store and issues a session
// token.
func (s *UserService) Login(username, password string) (string, *UserResponse, error) {
	if username == "" || password == "" {
		return "", nil, app_error.Validation("username and password are required")
	}
	user, err := s.userRepository.GetByUsername(username)
	if err != nil || !user.Active {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		return "", nil, app_error.Forbidden("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		return "", nil, app_error.Forbidden("invalid credentials")
	}
	token, err := auth.CreateToken(user)
	if err != nil {
		return "", nil, app_error.Internal(err)
	}
	metrics.LoginCounter.WithLabelValues("success").Inc()
	return token, toUserResponse(user), nil
}

// GetActive returns the account only when it exists and is active; the auth
// middleware uses it to reject tokens of removed or deactivated users.
func (s *UserService) GetActive(username string) (*repository.User, error) {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil || !user.Active {
		return nil, app_error.Forbidden("invalid or inactive user")
	}
	return user, nil
}

func (s *UserService) GetProfile(username string) (*UserResponse, error) {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, app_error.NotFound("user profile not found")
		}
		return nil, app_error.Internal(err)
	}
	return toUserResponse(user), nil
}

func (s *UserService) ListUsers() []*UserResponse {
	users := utils.Values(s.userRepository.FindAll())
	return utils.Map(users, toUserResponse)
}

func (s *UserService) Count() int {
	return s.userRepository.Count()
}

// CreateUser adds an account. Usernames need at least 3 characters,
// passwords at least 6, and the role must be admin or organizer.
func (s *UserService) CreateUser(username, password string, role repository.Role) (*UserResponse, error) {
	if username == "" || password == "" {
		return nil, app_error.Validation("username and password are required")
	}
	if len(username) < 3 {
		return nil, app_error.Validation("username must have at least 3 characters")
	}
	if len(password) < 6 {
		return nil, app_error.Validation("password must have at least 6 characters")
	}
	if role == "" {
		role = repository.RoleAdmin
	}
	if !repository.ValidRole(role) {
		return nil, app_error.Validation("invalid role, use %q or %q", repository.RoleAdmin, repository.RoleOrganizer)
	}
	if _, err := s.userRepository.GetByUsername(username); err == nil {
		return nil, app_error.Conflict("user already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, app_error.Internal(err)
	}
	user := &repository.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.userRepository.Upsert(user); err != nil {
		return nil, app_error.Internal(err)
	}
	return toUserResponse(user), nil
}

func (s *UserService) ChangePassword(username, newPassword string) error {
	if newPassword == "" {
		return app_error.Validation("new password is required")
	}
	if len(newPassword) < 6 {
		return app_error.Validation("password must have at least 6 characters")
	}
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return app_error.NotFound("user not found")
		}
		return app_error.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return app_error.Internal(err)
	}
	now := time.Now()
	user.PasswordHash = string(hash)
	user.UpdatedAt = &now
	if err := s.userRepository.Upsert(user); err != nil {
		return app_error.Internal(err)
	}
	return nil
}

// SetActive activates or deactivates an account. Users cannot deactivate
// themselves.
func (s *UserService) SetActive(requester, username string, active bool) error {
	user, err := s.userRepository.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return app_error.NotFound("user not found")
		}
		return app_error.Internal(err)
	}
	if username == requester && !active {
		return app_error.Validation("you cannot deactivate your own account")
	}
	now := time.Now()
	user.Active = active
	user.UpdatedAt = &now
	if active {
		user.DeactivatedAt = nil
		user.ReactivatedAt = &now
	} else {
		user.DeactivatedAt = &now
		user.ReactivatedAt = nil
	}
	if err := s.userRepository.Upsert(user); err != nil {
		return app_error.Internal(err)
	}
	return nil
}
