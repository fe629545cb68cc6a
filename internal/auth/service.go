package auth

import (
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (LoginResponse, error)
}

type RepositoryAPI interface {
	GetCredentialsByUsername(username string) (*Credentials, error)
}

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate validates credentials and returns the user record
func (s *Service) Authenticate(dto LoginDTO) (LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return LoginResponse{}, err
	}
	dto = dto.normalized()

	creds, err := s.repo.GetCredentialsByUsername(dto.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Info("login rejected", "username", dto.Username, "reason", "unknown user")
			return LoginResponse{}, ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Info("login rejected", "username", dto.Username, "reason", "password mismatch")
		return LoginResponse{}, ErrInvalidCredentials
	}

	resp := NewLoginResponse(creds.User)
	s.logger.Info("login succeeded", "username", resp.Username, "role", resp.Role)
	return resp, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
