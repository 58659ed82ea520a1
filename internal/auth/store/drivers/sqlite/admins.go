package sqlite

import (
	"context"
	"database/sql"

	"github.com/clubroll/clubroll/internal/auth/domain"
)

type adminsRepo struct {
	db *sql.DB
}

func (r *adminsRepo) GetAdminByUsername(ctx context.Context, username string) (domain.Admin, error) {
	var a domain.Admin
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, club_name, club_univ, created_at, updated_at
		FROM admins WHERE username = ?`, username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.ClubName, &a.ClubUniv, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Admin{}, mapNotFound(err)
	}
	return a, nil
}

func (r *adminsRepo) CreateAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, club_name, club_univ, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.PasswordHash, a.ClubName, a.ClubUniv, a.CreatedAt, a.UpdatedAt,
	)
	return mapUnique(err)
}
