// File: internal/model/user.go
package model

import (
	"time"

	"accounts-api/internal/password"
)

type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SetPassword 以 bcrypt 哈希後存入 PasswordHash，明文不保留
func (u *User) SetPassword(plain string) error {
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword 比對明文密碼；尚未設定密碼時一律失敗
func (u *User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return password.Compare(u.PasswordHash, plain) == nil
}
