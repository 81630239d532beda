package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const userColumns = `id, username, email, password_hash, avatar_url, is_active, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var avatar sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &avatar, &u.IsActive, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.AvatarURL = avatar.String
	return &u, nil
}

func (r *Repo) CreateUser(ctx context.Context, u models.User) error {
	var avatar any
	if u.AvatarURL != "" {
		avatar = u.AvatarURL
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, avatar_url)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, avatar)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = ?
	`, email)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get by email: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = ?
	`, username)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get by username: %w", err)
	}
	return u, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = ?
	`, id)

	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return u, nil
}

// IsActive reports whether the user exists and has not been deactivated.
func (r *Repo) IsActive(ctx context.Context, id string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT is_active
		FROM users
		WHERE id = ?
	`, id)

	var active bool
	if err := row.Scan(&active); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("get is_active: %w", err)
	}
	return active, nil
}

func (r *Repo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?
		WHERE id = ?
	`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update password: user not found")
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET is_active = ?
		WHERE id = ?
	`, active, id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set active rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set active: user not found")
	}
	return nil
}
