package auth

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"librarium/internal/config"
	"librarium/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrFullNameRequired   = errors.New("full name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Service handles registration and login.
type Service struct {
	db      *gorm.DB
	config  config.Auth
	limiter *LoginLimiter
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		limiter: NewLoginLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow),
	}
}

// Close stops the service's background goroutines.
func (s *Service) Close() {
	s.limiter.Stop()
}

// Register creates a new ordinary member.
func (s *Service) Register(fullName, email, password string) (*entities.User, error) {
	return s.createUser(fullName, email, password, entities.UserRoleMember)
}

// CreateAdmin creates a user with the admin role. Used by the bootstrap
// command, never exposed over HTTP.
func (s *Service) CreateAdmin(fullName, email, password string) (*entities.User, error) {
	return s.createUser(fullName, email, password, entities.UserRoleAdmin)
}

func (s *Service) createUser(fullName, email, password string, role entities.UserRole) (*entities.User, error) {
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	// RFC 5321 length limit plus a shape check
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	var existing entities.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password produce the same error so that accounts can not be probed.
func (s *Service) Login(email, password, clientIP string) (string, *entities.User, error) {
	if !s.limiter.Allow(clientIP, email) {
		return "", nil, ErrTooManyAttempts
	}

	var user entities.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	token, err := IssueToken(&user, s.config.JWTSecret, s.config.TokenExpiry)
	if err != nil {
		return "", nil, err
	}

	return token, &user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
