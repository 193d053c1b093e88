package verification

import (
	"context"
	"errors"
	"net/http"
	"time"

	"accounts-api/internal/cache"
	"accounts-api/internal/database"
	"accounts-api/internal/dto"
	"accounts-api/internal/mailer"
	"accounts-api/internal/middleware"
	"accounts-api/internal/service"
	"accounts-api/internal/store"
	"accounts-api/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const sendTimeout = 30 * time.Second

var (
	getUserByID              = store.GetUserByID
	setUserVerified          = store.SetUserVerified
	issueVerificationToken   = service.IssueVerificationToken
	consumeVerificationToken = service.ConsumeVerificationToken
)

// ResendVerificationHandler 重新寄送 Email 驗證信
// @Summary     Resend e-mail verification
// @Description 產生新的驗證令牌並於背景寄出驗證信
// @Tags        verification
// @Produce     json
// @Success     202 {object} dto.MessageResponse
// @Failure     401 {object} dto.HTTPError
// @Failure     409 {object} dto.HTTPError
// @Failure     500 {object} dto.HTTPError
// @Security    ApiKeyAuth
// @Router      /resend_email_verification [post]
func ResendVerificationHandler(db database.DB, c cache.Cache, pool worker.Pool, m mailer.Mailer, ttl time.Duration, log zerolog.Logger) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, ok := middleware.Claims(ctx)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, dto.HTTPError{Message: "invalid or missing token"})
		}
		reqCtx := ctx.Request().Context()

		user, err := getUserByID(reqCtx, db, claims.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.HTTPError{Message: "user not found"})
		}
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		if user.IsVerified {
			return ctx.JSON(http.StatusConflict, dto.HTTPError{Message: "email already verified"})
		}

		token, err := issueVerificationToken(reqCtx, c, user.ID, ttl)
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Message: "failed to issue verification token"})
		}

		msg := mailer.VerificationMessage(user.Email, ctx.Scheme()+"://"+ctx.Request().Host, token)
		err = pool.Submit(func() {
			sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := m.Send(sendCtx, msg); err != nil {
				log.Error().Err(err).Int("user_id", user.ID).Msg("send verification mail")
			}
		})
		if err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, dto.HTTPError{Message: "mail queue unavailable"})
		}

		return ctx.JSON(http.StatusAccepted, dto.MessageResponse{Message: "verification mail sent"})
	}
}

// VerifyEmailHandler 使用驗證令牌完成 Email 驗證
// @Summary     Verify e-mail
// @Description 消耗驗證令牌並將使用者標記為已驗證
// @Tags        verification
// @Produce     json
// @Param       token query    string true "驗證令牌"
// @Success     200   {object} dto.MessageResponse
// @Failure     400   {object} dto.HTTPError
// @Failure     404   {object} dto.HTTPError
// @Failure     500   {object} dto.HTTPError
// @Router      /verify_email [get]
func VerifyEmailHandler(db database.DB, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		userID, err := consumeVerificationToken(reqCtx, c, ctx.QueryParam("token"))
		if errors.Is(err, service.ErrInvalidVerificationToken) {
			return ctx.JSON(http.StatusBadRequest, dto.HTTPError{Message: err.Error()})
		}
		if err != nil {
			return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}

		if err := setUserVerified(reqCtx, db, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ctx.JSON(http.StatusNotFound, dto.HTTPError{Message: "user not found"})
			}
			return ctx.JSON(http.StatusInternalServerError, dto.HTTPError{Message: err.Error()})
		}
		return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "email verified"})
	}
}
