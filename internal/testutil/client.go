package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"accounts-api/internal/app"
	"accounts-api/internal/dto"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// Client 是綁定在 App 上的 HTTP client，所有路徑相對於測試伺服器
type Client struct {
	BaseURL string

	http  *http.Client
	token string
}

// NewClient 以 httptest.Server 啟動 a.Echo，測試結束時關閉
func NewClient(t testing.TB, a *app.App) *Client {
	t.Helper()
	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)
	return &Client{BaseURL: srv.URL, http: srv.Client()}
}

// WithToken 回傳會帶上 Bearer token 的副本
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	return c.http.Do(req)
}

func (c *Client) newRequest(method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, body)
}

func (c *Client) Get(path string) (*http.Response, error) {
	req, err := c.newRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *Client) PostJSON(path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := c.newRequest(http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return c.Do(req)
}

func (c *Client) PostForm(path string, values url.Values) (*http.Response, error) {
	req, err := c.newRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c.Do(req)
}

// Login 以 Email/Password 登入並回傳帶 token 的 Client
func (c *Client) Login(t testing.TB, email, password string) *Client {
	t.Helper()
	resp, err := c.PostForm("/api/auth/login", url.Values{"email": {email}, "password": {password}})
	require.NoError(t, err)
	var out dto.LoginResponse
	DecodeJSON(t, resp, http.StatusOK, &out)
	return c.WithToken(out.AccessToken)
}

// DecodeJSON 檢查狀態碼並解析 JSON body，結束後關閉 body
func DecodeJSON(t testing.TB, resp *http.Response, status int, v any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, status, resp.StatusCode, string(body))
	if v != nil {
		require.NoError(t, json.Unmarshal(body, v))
	}
}
