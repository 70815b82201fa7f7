package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-ticket-marketplace/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

// PreflightResponse は ?preflight=true の成功レスポンス
type PreflightResponse struct {
	OK bool `json:"ok"`
}

func preflightOK(c echo.Context) error {
	return c.JSON(http.StatusOK, PreflightResponse{OK: true})
}

// isPreflight は検証だけ行うリクエストかを返す
func isPreflight(c echo.Context) bool {
	v, err := strconv.ParseBool(c.QueryParam("preflight"))
	return err == nil && v
}

func callerOf(c echo.Context) (principal.ID, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "X-Caller-ID ヘッダーが必要です")
	}
	return caller, nil
}

func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "IDの形式が不正です").SetInternal(err)
	}
	return id, nil
}

// bindAndValidate はボディを読み込み、バリデーションまで行う
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です").SetInternal(err)
	}
	return c.Validate(req)
}

// parseAmount は金額文字列を読む。空なら0
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, echo.NewHTTPError(http.StatusBadRequest, "金額の形式が不正です").SetInternal(err)
	}
	return d, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
