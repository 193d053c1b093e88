package app

import (
	"errors"
	"io"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
)

var (
	ErrNoRequestContext     = errors.New("no request context pushed")
	ErrContextOutOfOrder    = errors.New("request context popped out of order")
	ErrContextAlreadyPushed = errors.New("request context already pushed")
)

// RequestContext 是綁定在 App 上、不經過網路的 echo.Context，
// 供測試在沒有真實請求時呼叫 handler 或讀取請求範圍的資料。
type RequestContext struct {
	echo.Context
	Recorder *httptest.ResponseRecorder

	app    *App
	pushed bool
}

// TestRequestContext 建立一個尚未 Push 的 RequestContext
func (a *App) TestRequestContext(method, target string, body io.Reader) *RequestContext {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	return &RequestContext{
		Context:  a.Echo.NewContext(req, rec),
		Recorder: rec,
		app:      a,
	}
}

// Push 將 rc 放到 App 的 context stack 頂端
func (rc *RequestContext) Push() error {
	a := rc.app
	a.mu.Lock()
	defer a.mu.Unlock()
	if rc.pushed {
		return ErrContextAlreadyPushed
	}
	a.contexts = append(a.contexts, rc)
	rc.pushed = true
	return nil
}

// Pop 移除 stack 頂端的 context，rc 必須是目前的頂端
func (rc *RequestContext) Pop() error {
	a := rc.app
	a.mu.Lock()
	defer a.mu.Unlock()
	n := len(a.contexts)
	if n == 0 || !rc.pushed {
		return ErrNoRequestContext
	}
	if a.contexts[n-1] != rc {
		return ErrContextOutOfOrder
	}
	a.contexts[n-1] = nil
	a.contexts = a.contexts[:n-1]
	rc.pushed = false
	return nil
}

// ContextDepth 回傳目前已 Push 的 context 數量
func (a *App) ContextDepth() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.contexts)
}

// CurrentContext 回傳 stack 頂端的 context
func (a *App) CurrentContext() (*RequestContext, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.contexts) == 0 {
		return nil, false
	}
	return a.contexts[len(a.contexts)-1], true
}
