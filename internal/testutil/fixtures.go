package testutil

import (
	"context"
	"net/http"
	"testing"

	"accounts-api/internal/app"
	"accounts-api/internal/config"
	"accounts-api/internal/database"
	"accounts-api/internal/model"
	"accounts-api/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	AdminEmail    = "admin@test.com"
	AdminPassword = "password321"
	UserEmail     = "user@test.com"
	UserPassword  = "password123"
)

var (
	newApp     = app.New
	createAll  = database.CreateAll
	dropAll    = database.DropAll
	createUser = store.CreateUser
)

// NewApp 以測試設定建立 App、建立 schema 並 Push 一個 request context。
// 測試結束時 Pop 該 context 並關閉 App。
func NewApp(t testing.TB, opts ...app.Option) *app.App {
	t.Helper()

	cfg := config.TestConfig()
	if cfg.DatabaseURL == "" || cfg.RedisAddr == "" {
		t.Skip("TEST_DATABASE_URL and TEST_REDIS_ADDR must be set")
	}

	opts = append([]app.Option{app.WithLogger(zerolog.New(zerolog.NewTestWriter(t)))}, opts...)
	a, err := newApp(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("close app: %v", err)
		}
	})

	require.NoError(t, createAll(cfg.DatabaseURL))

	rc := a.TestRequestContext(http.MethodGet, "/", nil)
	require.NoError(t, rc.Push())
	t.Cleanup(func() {
		if err := rc.Pop(); err != nil {
			t.Errorf("pop request context: %v", err)
		}
	})
	return a
}

// NewDB 確保 schema 存在並回傳 App 的 DB。
// 測試結束時先釋放連線再 drop 所有資料表。
func NewDB(t testing.TB, a *app.App) database.DB {
	t.Helper()

	url := a.Config.DatabaseURL
	require.NoError(t, createAll(url))
	t.Cleanup(func() {
		a.DB.Reset()
		if err := dropAll(url); err != nil {
			t.Errorf("drop schema: %v", err)
		}
	})
	return a.DB
}

// NewAdmin 建立 admin@test.com 管理員
func NewAdmin(t testing.TB, db database.DB) *model.User {
	t.Helper()
	return seedUser(t, db, AdminEmail, AdminPassword, true)
}

// NewUser 建立 user@test.com 一般使用者
func NewUser(t testing.TB, db database.DB) *model.User {
	t.Helper()
	return seedUser(t, db, UserEmail, UserPassword, false)
}

func seedUser(t testing.TB, db database.DB, email, plain string, isAdmin bool) *model.User {
	t.Helper()

	u := &model.User{Email: email, IsAdmin: isAdmin}
	require.NoError(t, u.SetPassword(plain))
	created, err := createUser(context.Background(), db, u)
	require.NoError(t, err, "create %s", email)
	return created
}
