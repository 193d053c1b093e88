package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "json")
	require.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	ml := Component(l, "mailer")
	ml.Warn().Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "mailer", line["component"])
	require.Equal(t, "shown", line["message"])
}

func TestNewInvalidLevel(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{}, "loud", "json")
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(NewWithWriter(&buf, "info", "json")))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "GET", line["method"])
	require.Equal(t, "/ok", line["uri"])
	require.EqualValues(t, http.StatusOK, line["status"])
}
