package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanosuguru/go-ticket-marketplace/internal/config"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	original := logger.Get()
	t.Cleanup(func() { logger.Set(original) })
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	return logs
}

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, config.ServerConfig{CORSAllowOrigins: []string{"https://shop.example.com"}, BodyLimit: "1K"})

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	t.Run("許可したオリジンにだけ CORS ヘッダーを返す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set(echo.HeaderOrigin, "https://shop.example.com")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "https://shop.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), HeaderCallerID)

		req = httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})

	t.Run("上限を超えるボディは413", func(t *testing.T) {
		e.POST("/body", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
		req := httptest.NewRequest(http.MethodPost, "/body", strings.NewReader(strings.Repeat("x", 2048)))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		handler echo.HandlerFunc
		status  int
		level   zapcore.Level
	}{
		{
			name:    "成功は Info",
			handler: func(c echo.Context) error { return c.String(http.StatusOK, "success") },
			status:  http.StatusOK,
			level:   zapcore.InfoLevel,
		},
		{
			name:    "HTTPError は Warn",
			handler: func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "conflict") },
			status:  http.StatusConflict,
			level:   zapcore.WarnLevel,
		},
		{
			name:    "未分類のエラーは Error",
			handler: func(c echo.Context) error { return errors.New("boom") },
			status:  http.StatusInternalServerError,
			level:   zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := observeLogs(t)
			e := echo.New()
			e.Use(RequestIDMiddleware())
			e.Use(RequestLogger())
			e.GET("/test", tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(echo.HeaderXRequestID, "req-123")
			req.Header.Set(HeaderCallerID, "alice")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
			assert.Equal(t, "alice", entry.ContextMap()["caller"])
		})
	}
}

func TestRequestLogger_ScopedLoggerInContext(t *testing.T) {
	logs := observeLogs(t)
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogger())
	e.GET("/test", func(c echo.Context) error {
		logger.FromContext(c.Request().Context()).Info("inside handler")
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-456")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	entries := logs.FilterMessage("inside handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-456", entries[0].ContextMap()["request_id"])
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Request().Header.Get(echo.HeaderXRequestID))
	})

	t.Run("なければ生成する", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		id := rec.Header().Get(echo.HeaderXRequestID)
		assert.Len(t, id, 36)
		assert.Equal(t, id, rec.Body.String(), "下流からも同じIDが見える")
	})

	t.Run("既存のIDを維持する", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(echo.HeaderXRequestID, "existing-request-id")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "existing-request-id", rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestRequireCaller(t *testing.T) {
	e := echo.New()
	e.POST("/op", func(c echo.Context) error {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		return c.String(http.StatusOK, caller.String())
	}, RequireCaller())

	t.Run("ヘッダーなしは401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/op", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("空白だけのヘッダーは401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/op", nil)
		req.Header.Set(HeaderCallerID, "   ")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("前後の空白を除いて渡す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/op", nil)
		req.Header.Set(HeaderCallerID, " alice ")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
	})
}

func TestCallerFrom_NotSet(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := CallerFrom(c)
	assert.False(t, ok)

	c.Set(callerKey, principal.ID(""))
	_, ok = CallerFrom(c)
	assert.False(t, ok)
}

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e := echo.New()
	e.Use(PrometheusMiddleware(m))
	e.GET("/tickets/:tokenId", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	for _, path := range []string{"/tickets/1", "/tickets/2", "/error"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/tickets/:tokenId", "200")), "パスパターンで集約する")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/error", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
}
