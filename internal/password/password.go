// File: internal/password/password.go
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength 密碼最短長度（字元）
	MinLength = 8
	// MaxBytes bcrypt 可接受的最大長度（位元組）
	MaxBytes = 72
)

var (
	ErrTooShort      = fmt.Errorf("password must be at least %d characters", MinLength)
	ErrTooLong       = fmt.Errorf("password must be at most %d bytes", MaxBytes)
	ErrMissingUpper  = errors.New("password must contain an upper-case letter")
	ErrMissingLower  = errors.New("password must contain a lower-case letter")
	ErrMissingDigit  = errors.New("password must contain a digit")
	ErrInvalidCost   = errors.New("invalid bcrypt cost")
	ErrMismatch      = errors.New("password mismatch")
	generateFromPass = bcrypt.GenerateFromPassword
	randInt          = rand.Int
)

var cost atomic.Int64

func init() {
	cost.Store(int64(bcrypt.DefaultCost))
}

// SetCost 設定 bcrypt cost，測試環境通常使用 bcrypt.MinCost
func SetCost(c int) error {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		return fmt.Errorf("%w: %d", ErrInvalidCost, c)
	}
	cost.Store(int64(c))
	return nil
}

// Cost 目前使用的 bcrypt cost
func Cost() int {
	return int(cost.Load())
}

// Hash 接收明文密碼，回傳 bcrypt 哈希字串
func Hash(plain string) (string, error) {
	b, err := generateFromPass([]byte(plain), Cost())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare 比對明文密碼與 bcrypt 哈希，成功回傳 nil
func Compare(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}
	return nil
}

// Validate 檢查密碼強度：長度（含 bcrypt 上限）、大寫、小寫、數字
func Validate(plain string) error {
	if len([]rune(plain)) < MinLength {
		return ErrTooShort
	}
	if len(plain) > MaxBytes {
		return ErrTooLong
	}
	var upper, lower, digit bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return ErrMissingUpper
	case !lower:
		return ErrMissingLower
	case !digit:
		return ErrMissingDigit
	}
	return nil
}

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*()-_=+[]{}<>?"

// Generate 產生指定長度的隨機密碼，且必定通過 Validate
func Generate(length int) (string, error) {
	if length < MinLength {
		length = MinLength
	}
	for {
		pwd := make([]byte, length)
		for i := range pwd {
			n, err := randInt(rand.Reader, big.NewInt(int64(len(charset))))
			if err != nil {
				return "", err
			}
			pwd[i] = charset[n.Int64()]
		}
		if Validate(string(pwd)) == nil {
			return string(pwd), nil
		}
	}
}
