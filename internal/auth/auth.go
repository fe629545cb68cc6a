package auth

import (
	"errors"

	"github.com/frahmantamala/insight-pulse/internal/user"
)

// Credentials is what the repository hands back for a username: the stored
// hash plus the profile returned on a successful login.
type Credentials struct {
	User         user.User
	PasswordHash string
}

// LoginResponse is the user record the front ends persist after login.
type LoginResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)

func NewLoginResponse(u user.User) LoginResponse {
	return LoginResponse{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Role:       user.NormalizeRole(u.Role),
	}
}
