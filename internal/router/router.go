// File: internal/router/router.go
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"accounts-api/internal/cache"
	"accounts-api/internal/database"
	"accounts-api/internal/handler"
	"accounts-api/internal/handler/auth"
	"accounts-api/internal/handler/users"
	"accounts-api/internal/handler/verification"
	"accounts-api/internal/mailer"
	"accounts-api/internal/middleware"
	"accounts-api/internal/worker"
)

// Deps 路由所需的相依物件
type Deps struct {
	DB              database.DB
	Cache           cache.Cache
	Workers         worker.Pool
	Mailer          mailer.Mailer
	Log             zerolog.Logger
	JWTSecret       string
	AccessTokenTTL  time.Duration
	VerificationTTL time.Duration
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	api := e.Group("/api")
	requireAuth := middleware.RequireAuth(d.JWTSecret)

	// 健康檢查（需登入）
	api.GET("/ping", handler.PingHandler(d.DB, d.Cache), requireAuth)

	// 使用者登入
	api.POST("/auth/login", auth.LoginHandler(d.DB, d.JWTSecret, d.AccessTokenTTL))

	// 個人帳號操作
	api.POST("/change_password", users.ChangePasswordHandler(d.DB), requireAuth)
	api.POST("/resend_email_verification",
		verification.ResendVerificationHandler(d.DB, d.Cache, d.Workers, d.Mailer, d.VerificationTTL, d.Log),
		requireAuth)
	api.GET("/verify_email", verification.VerifyEmailHandler(d.DB, d.Cache))

	// /users/me 須先於 /users/:id 註冊
	api.GET("/users/me", users.GetMyUserHandler(d.DB), requireAuth)

	// 管理員專屬 Users CRUD
	apiUsers := api.Group("/users", middleware.RequireAdmin(d.JWTSecret))
	apiUsers.POST("", users.CreateUserHandler(d.DB))
	apiUsers.GET("", users.ListUsersHandler(d.DB))
	apiUsers.GET("/:id", users.GetUserHandler(d.DB))
	apiUsers.PUT("/:id", users.UpdateUserHandler(d.DB))
	apiUsers.DELETE("/:id", users.DeleteUserHandler(d.DB))
	apiUsers.POST("/:id/reset_password", users.ResetUserPasswordHandler(d.DB))
}
