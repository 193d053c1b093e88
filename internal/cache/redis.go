package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient 是 NewRedisClient 需要的方法集合，測試時以 stub 取代
type redisClient interface {
	Cache
	Ping(ctx context.Context) *redis.StatusCmd
}

var (
	pingTimeout    = 5 * time.Second
	redisNewClient = func(opt *redis.Options) redisClient { return redis.NewClient(opt) }
)

// NewRedisClient 建立 Redis 客戶端並確認可以連線，失敗時關閉客戶端
// password 可為空（僅限測試環境）；db 為資料庫編號
func NewRedisClient(addr string, password string, db int) (Cache, error) {
	client := redisNewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: pingTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("NewRedisClient %s: %w", addr, err)
	}
	return client, nil
}
