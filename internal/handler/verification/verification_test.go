package verification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"accounts-api/internal/cache"
	"accounts-api/internal/database"
	"accounts-api/internal/mailer"
	"accounts-api/internal/middleware"
	"accounts-api/internal/model"
	"accounts-api/internal/service"
	"accounts-api/internal/store"
	"accounts-api/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func restore() {
	getUserByID = store.GetUserByID
	setUserVerified = store.SetUserVerified
	issueVerificationToken = service.IssueVerificationToken
	consumeVerificationToken = service.ConsumeVerificationToken
}

// syncPool 直接在呼叫端執行 task，方便斷言
type syncPool struct{ err error }

func (p syncPool) Submit(t worker.Task) error {
	if p.err != nil {
		return p.err
	}
	t()
	return nil
}
func (syncPool) Stop() {}

func newCtx(method, target string, userID int) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set(middleware.ContextUserKey, &service.CustomClaims{UserID: userID})
	}
	return c, rec
}

func TestResendVerificationHandler(t *testing.T) {
	t.Cleanup(restore)
	db := &database.FakeDB{}
	c := &cache.FakeCache{}
	m := &mailer.FakeMailer{}
	h := func(p worker.Pool) echo.HandlerFunc {
		return ResendVerificationHandler(db, c, p, m, time.Hour, zerolog.Nop())
	}

	ctx, rec := newCtx(http.MethodPost, "/api/resend_email_verification", 0)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, store.ErrNotFound }
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusNotFound, rec.Code)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) { return nil, errors.New("db") }
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
		return &model.User{ID: 3, Email: "user@test.com", IsVerified: true}, nil
	}
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusConflict, rec.Code)

	getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
		return &model.User{ID: 3, Email: "user@test.com"}, nil
	}
	issueVerificationToken = func(context.Context, cache.Cache, int, time.Duration) (string, error) {
		return "", errors.New("redis")
	}
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	issueVerificationToken = func(_ context.Context, _ cache.Cache, id int, ttl time.Duration) (string, error) {
		require.Equal(t, 3, id)
		require.Equal(t, time.Hour, ttl)
		return "tok-1", nil
	}
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{err: worker.ErrStopped})(ctx))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{err: worker.ErrQueueFull})(ctx))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var mu sync.Mutex
	var sent []mailer.Message
	m.SendFn = func(_ context.Context, msg mailer.Message) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, msg)
		return nil
	}
	ctx, rec = newCtx(http.MethodPost, "/api/resend_email_verification", 3)
	require.NoError(t, h(syncPool{})(ctx))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, sent, 1)
	require.Equal(t, "user@test.com", sent[0].To)
	require.Contains(t, sent[0].Body, "/api/verify_email?token=tok-1")
}

func TestResendVerificationWithWorkerPool(t *testing.T) {
	t.Cleanup(restore)
	getUserByID = func(context.Context, database.DB, int) (*model.User, error) {
		return &model.User{ID: 5, Email: "admin@test.com"}, nil
	}
	issueVerificationToken = func(context.Context, cache.Cache, int, time.Duration) (string, error) {
		return "tok-2", nil
	}
	done := make(chan mailer.Message, 1)
	m := &mailer.FakeMailer{SendFn: func(_ context.Context, msg mailer.Message) error {
		done <- msg
		return errors.New("smtp down")
	}}
	pool := worker.NewPool(1, zerolog.Nop())
	defer pool.Stop()

	ctx, rec := newCtx(http.MethodPost, "/api/resend_email_verification", 5)
	require.NoError(t, ResendVerificationHandler(&database.FakeDB{}, &cache.FakeCache{}, pool, m, time.Hour, zerolog.Nop())(ctx))
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case msg := <-done:
		require.Equal(t, "admin@test.com", msg.To)
	case <-time.After(5 * time.Second):
		t.Fatal("mail was never sent")
	}
}

func TestVerifyEmailHandler(t *testing.T) {
	t.Cleanup(restore)
	db := &database.FakeDB{}
	c := &cache.FakeCache{}

	consumeVerificationToken = func(context.Context, cache.Cache, string) (int, error) {
		return 0, service.ErrInvalidVerificationToken
	}
	ctx, rec := newCtx(http.MethodGet, "/api/verify_email?token=bad", 0)
	require.NoError(t, VerifyEmailHandler(db, c)(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	consumeVerificationToken = func(context.Context, cache.Cache, string) (int, error) {
		return 0, errors.New("redis")
	}
	ctx, rec = newCtx(http.MethodGet, "/api/verify_email?token=x", 0)
	require.NoError(t, VerifyEmailHandler(db, c)(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	consumeVerificationToken = func(_ context.Context, _ cache.Cache, token string) (int, error) {
		require.Equal(t, "good", token)
		return 7, nil
	}
	setUserVerified = func(context.Context, database.DB, int) error { return store.ErrNotFound }
	ctx, rec = newCtx(http.MethodGet, "/api/verify_email?token=good", 0)
	require.NoError(t, VerifyEmailHandler(db, c)(ctx))
	require.Equal(t, http.StatusNotFound, rec.Code)

	setUserVerified = func(context.Context, database.DB, int) error { return errors.New("db") }
	ctx, rec = newCtx(http.MethodGet, "/api/verify_email?token=good", 0)
	require.NoError(t, VerifyEmailHandler(db, c)(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	verified := 0
	setUserVerified = func(_ context.Context, _ database.DB, id int) error { verified = id; return nil }
	ctx, rec = newCtx(http.MethodGet, "/api/verify_email?token=good", 0)
	require.NoError(t, VerifyEmailHandler(db, c)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 7, verified)
}
