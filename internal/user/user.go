package user

import (
	"errors"
	"strings"

	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

var ErrNotFound = errors.New("user not found")

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Role:       u.Role,
	}
}

// NormalizeRole folds the role spellings stored by older back-office tools
// into the two roles the front ends understand. Anything else is lower-cased
// and passed through so the client can reject it.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	switch r {
	case "admin", "administrator":
		return RoleAdmin
	case "user", "staff", "employee":
		return RoleUser
	default:
		return r
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Department:     u.Department,
		HashedPassword: u.PasswordHash,
		Role:           u.Role,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Department:   u.Department,
		Role:         NormalizeRole(u.Role),
		PasswordHash: u.HashedPassword,
	}
}
