package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"accounts-api/internal/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const verificationKeyPrefix = "verify:"

var (
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")

	newToken = uuid.NewString
)

func verificationKey(token string) string {
	return verificationKeyPrefix + token
}

// IssueVerificationToken 產生 Email 驗證令牌並存入快取，ttl 後失效
func IssueVerificationToken(ctx context.Context, c cache.Cache, userID int, ttl time.Duration) (string, error) {
	token := newToken()
	if err := c.Set(ctx, verificationKey(token), strconv.Itoa(userID), ttl).Err(); err != nil {
		return "", fmt.Errorf("IssueVerificationToken: %w", err)
	}
	return token, nil
}

// ConsumeVerificationToken 以 GETDEL 取出令牌對應的使用者 ID，令牌只能使用一次
func ConsumeVerificationToken(ctx context.Context, c cache.Cache, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidVerificationToken
	}
	val, err := c.GetDel(ctx, verificationKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidVerificationToken
	}
	if err != nil {
		return 0, fmt.Errorf("ConsumeVerificationToken: %w", err)
	}
	userID, err := strconv.Atoi(val)
	if err != nil {
		return 0, ErrInvalidVerificationToken
	}
	return userID, nil
}
