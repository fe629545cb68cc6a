package auth

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/insight-pulse/internal/auth"
	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
	"github.com/frahmantamala/insight-pulse/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByUsername(username string) (*auth.Credentials, error) {
	var row userDatamodel.User
	if err := r.db.Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	return &auth.Credentials{
		User:         *user.FromDataModel(&row),
		PasswordHash: row.HashedPassword,
	}, nil
}

func (r *Repository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}
