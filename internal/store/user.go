package store

import (
	"context"
	"errors"
	"fmt"

	"accounts-api/internal/database"
	"accounts-api/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

const uniqueViolation = "23505"

const userColumns = `id, email, password_hash, is_admin, is_verified, created_at`

// mapErr 將 pgx 錯誤轉成 store 的 sentinel error
func mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsVerified,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("GetUserByID", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("GetUserByEmail", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db database.DB) ([]*model.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, mapErr("ListUsers", err)
	}
	defer rows.Close()

	users := []*model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapErr("ListUsers", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("ListUsers", err)
	}
	return users, nil
}

func CountUsers(ctx context.Context, db database.DB) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, mapErr("CountUsers", err)
	}
	return n, nil
}

// CreateUser 新增使用者並回填 id 與 created_at；PasswordHash 必須已設定
func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	if u.PasswordHash == "" {
		return nil, errors.New("CreateUser: password not set")
	}
	row := db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, is_admin, is_verified)
		 VALUES (lower($1), $2, $3, $4)
		 RETURNING id, email, created_at`,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
		u.IsVerified,
	)
	if err := row.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		return nil, mapErr("CreateUser", err)
	}
	return u, nil
}

func UpdateUser(ctx context.Context, db database.DB, u *model.User) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET email = lower($1), is_admin = $2
		 WHERE id = $3`,
		u.Email,
		u.IsAdmin,
		u.ID,
	)
	if err != nil {
		return mapErr("UpdateUser", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateUser: %w", ErrNotFound)
	}
	return nil
}

func UpdateUserPassword(ctx context.Context, db database.DB, userID int, passwordHash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1
		 WHERE id = $2`,
		passwordHash,
		userID,
	)
	if err != nil {
		return mapErr("UpdateUserPassword", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("UpdateUserPassword: %w", ErrNotFound)
	}
	return nil
}

func SetUserVerified(ctx context.Context, db database.DB, userID int) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET is_verified = TRUE WHERE id = $1`,
		userID,
	)
	if err != nil {
		return mapErr("SetUserVerified", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SetUserVerified: %w", ErrNotFound)
	}
	return nil
}

func DeleteUser(ctx context.Context, db database.DB, ID int) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		ID,
	)
	if err != nil {
		return mapErr("DeleteUser", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("DeleteUser: %w", ErrNotFound)
	}
	return nil
}
