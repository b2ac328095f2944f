package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `id, email, password_hash, full_name, phone, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND is_active`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FullName     string
	Phone        pgtype.Text
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		arg.Email, arg.PasswordHash, arg.FullName, arg.Phone)
	return scanUser(row)
}

type UpdateUserParams struct {
	ID       uuid.UUID
	FullName string
	Phone    pgtype.Text
	IsActive bool
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE users SET full_name = $2, phone = $3, is_active = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		arg.ID, arg.FullName, arg.Phone, arg.IsActive)
	return scanUser(row)
}

type GetUserSchoolRoleParams struct {
	UserID   uuid.UUID
	SchoolID uuid.UUID
}

func (q *Queries) GetUserSchoolRole(ctx context.Context, arg GetUserSchoolRoleParams) (UserSchoolRole, error) {
	var r UserSchoolRole
	err := q.db.QueryRow(ctx, `
		SELECT user_id, school_id, role, created_at FROM user_school_roles
		WHERE user_id = $1 AND school_id = $2`,
		arg.UserID, arg.SchoolID).Scan(&r.UserID, &r.SchoolID, &r.Role, &r.CreatedAt)
	return r, err
}

func (q *Queries) ListUserSchoolRoles(ctx context.Context, userID uuid.UUID) ([]UserSchoolRole, error) {
	rows, err := q.db.Query(ctx, `
		SELECT user_id, school_id, role, created_at FROM user_school_roles
		WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []UserSchoolRole
	for rows.Next() {
		var r UserSchoolRole
		if err := rows.Scan(&r.UserID, &r.SchoolID, &r.Role, &r.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

type UpsertUserSchoolRoleParams struct {
	UserID   uuid.UUID
	SchoolID uuid.UUID
	Role     string
}

func (q *Queries) UpsertUserSchoolRole(ctx context.Context, arg UpsertUserSchoolRoleParams) (UserSchoolRole, error) {
	var r UserSchoolRole
	err := q.db.QueryRow(ctx, `
		INSERT INTO user_school_roles (user_id, school_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, school_id) DO UPDATE SET role = EXCLUDED.role
		RETURNING user_id, school_id, role, created_at`,
		arg.UserID, arg.SchoolID, arg.Role).Scan(&r.UserID, &r.SchoolID, &r.Role, &r.CreatedAt)
	return r, err
}

type DeleteUserSchoolRoleParams struct {
	UserID   uuid.UUID
	SchoolID uuid.UUID
}

func (q *Queries) DeleteUserSchoolRole(ctx context.Context, arg DeleteUserSchoolRoleParams) error {
	ct, err := q.db.Exec(ctx,
		`DELETE FROM user_school_roles WHERE user_id = $1 AND school_id = $2`,
		arg.UserID, arg.SchoolID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
