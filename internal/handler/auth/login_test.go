package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accounts-api/internal/database"
	"accounts-api/internal/model"
	"accounts-api/internal/password"
	"accounts-api/internal/service"
	"accounts-api/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// helper to build echo context
func newLoginCtx(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type errBinder struct{}

func (errBinder) Bind(i any, c echo.Context) error { return errors.New("bind") }

type errValidator struct{}

func (errValidator) Validate(i any) error { return errors.New("v") }

type okValidator struct{}

func (okValidator) Validate(i any) error { return nil }

type fakeRow struct {
	u   model.User
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int) = r.u.ID
	*dest[1].(*string) = r.u.Email
	*dest[2].(*string) = r.u.PasswordHash
	*dest[3].(*bool) = r.u.IsAdmin
	*dest[4].(*bool) = r.u.IsVerified
	*dest[5].(*time.Time) = r.u.CreatedAt
	return nil
}

func restore() {
	getUserByEmail = store.GetUserByEmail
	authenticateUser = service.AuthenticateUser
	issueAccessToken = service.IssueAccessToken
}

func rowDB(row fakeRow) *database.FakeDB {
	return &database.FakeDB{QueryRowFn: func(context.Context, string, ...any) pgx.Row { return row }}
}

func TestLoginHandler(t *testing.T) {
	require.NoError(t, password.SetCost(bcrypt.MinCost))
	t.Cleanup(func() { _ = password.SetCost(bcrypt.DefaultCost) })
	goodHash, err := password.Hash("b")
	require.NoError(t, err)

	// bind error
	e := echo.New()
	e.Binder = errBinder{}
	ctx, rec := newLoginCtx(e, "")
	require.NoError(t, LoginHandler(&database.FakeDB{}, "s", time.Hour)(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// validate error
	e = echo.New()
	e.Validator = errValidator{}
	ctx, rec = newLoginCtx(e, "email=a@b.co&password=b")
	require.NoError(t, LoginHandler(&database.FakeDB{}, "s", time.Hour)(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// user not found
	e = echo.New()
	e.Validator = okValidator{}
	ctx, rec = newLoginCtx(e, "email=a@b.co&password=b")
	require.NoError(t, LoginHandler(rowDB(fakeRow{err: pgx.ErrNoRows}), "s", time.Hour)(ctx))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong password
	ctx, rec = newLoginCtx(e, "email=a@b.co&password=wrong")
	require.NoError(t, LoginHandler(rowDB(fakeRow{u: model.User{ID: 1, PasswordHash: goodHash}}), "s", time.Hour)(ctx))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")

	// issue token error (secret not set)
	ctx, rec = newLoginCtx(e, "email=a@b.co&password=b")
	require.NoError(t, LoginHandler(rowDB(fakeRow{u: model.User{ID: 1, PasswordHash: goodHash}}), "", time.Hour)(ctx))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// success
	ctx, rec = newLoginCtx(e, "email=a@b.co&password=b")
	require.NoError(t, LoginHandler(rowDB(fakeRow{u: model.User{ID: 1, IsAdmin: true, PasswordHash: goodHash}}), "s", time.Hour)(ctx))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "access_token")
	require.Contains(t, rec.Body.String(), `"token_type":"Bearer"`)
}

func TestLoginHandlerJSON(t *testing.T) {
	t.Cleanup(restore)
	getUserByEmail = func(_ context.Context, _ database.DB, email string) (*model.User, error) {
		require.Equal(t, "admin@test.com", email)
		return &model.User{ID: 9, IsAdmin: true}, nil
	}
	authenticateUser = func(context.Context, model.User, string) error { return nil }
	var issuedFor model.User
	issueAccessToken = func(u model.User, secret string, ttl time.Duration) (string, time.Time, error) {
		issuedFor = u
		require.Equal(t, "s", secret)
		require.Equal(t, time.Hour, ttl)
		return "tok", time.Unix(0, 0), nil
	}

	e := echo.New()
	e.Validator = okValidator{}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"admin@test.com","password":"password321"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, LoginHandler(&database.FakeDB{}, "s", time.Hour)(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"access_token":"tok"`)
	require.Equal(t, 9, issuedFor.ID)
	require.True(t, issuedFor.IsAdmin)
}
