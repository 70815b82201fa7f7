package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// HeaderCallerID は呼び出し元 principal を運ぶヘッダー
const HeaderCallerID = "X-Caller-ID"

const callerKey = "caller"

// RequireCaller は X-Caller-ID を必須にし、principal を context に載せる
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := principal.Parse(c.Request().Header.Get(HeaderCallerID))
			if caller.IsZero() {
				return echo.NewHTTPError(http.StatusUnauthorized, "X-Caller-ID ヘッダーが必要です")
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// CallerFrom は RequireCaller が設定した呼び出し元を返す
func CallerFrom(c echo.Context) (principal.ID, bool) {
	caller, ok := c.Get(callerKey).(principal.ID)
	return caller, ok && !caller.IsZero()
}
