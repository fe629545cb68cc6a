package postgres

import (
	"context"
	"fmt"

	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
	"github.com/jmoiron/sqlx"
)

const selectUsers = `SELECT id, username, name, email, COALESCE(department, '') AS department, COALESCE(role, 'user') AS role FROM users`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]userDatamodel.User, error) {
	users := []userDatamodel.User{}
	if err := r.db.SelectContext(ctx, &users, selectUsers+" ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ListByDepartments(ctx context.Context, departments []string) ([]userDatamodel.User, error) {
	users := []userDatamodel.User{}
	if len(departments) == 0 {
		return users, nil
	}

	query, args, err := sqlx.In(selectUsers+" WHERE department IN (?) ORDER BY username", departments)
	if err != nil {
		return nil, fmt.Errorf("build users by department query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list users by department: %w", err)
	}
	return users, nil
}
