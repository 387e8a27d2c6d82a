package postgres

import (
	"context"
	"database/sql"

	"docmanager/internal/database"
	"docmanager/internal/model"
	"docmanager/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	acc *database.Accessor
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(acc *database.Accessor) *UserPostgres {
	return &UserPostgres{acc: acc}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const selectUser = `SELECT id, username, password_hash, role FROM users`

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role)
	return u, err
}

func (r *UserPostgres) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.acc.DB().QueryContext(ctx, selectUser+` ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserPostgres) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.acc.DB().QueryRowContext(ctx, selectUser+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.acc.DB().QueryRowContext(ctx, selectUser+` WHERE username = $1`, username))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `INSERT INTO users (username, password_hash, role) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.acc.DB().QueryRowContext(ctx, q, u.Username, u.PasswordHash, u.Role).Scan(&id); err != nil {
		return nil, err
	}
	out := *u
	out.ID = id
	return &out, nil
}

func (r *UserPostgres) UpdateRole(ctx context.Context, id int64, role string) error {
	return r.execOne(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execOne(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
}

func (r *UserPostgres) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.acc.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserPostgres) execOne(ctx context.Context, q string, args ...any) error {
	n, err := r.acc.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
