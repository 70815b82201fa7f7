package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/failure"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatusOf はドメインエラーの種別を HTTP ステータスに対応付ける
func StatusOf(err error) int {
	switch failure.KindOf(err) {
	case failure.ErrValidation:
		return http.StatusBadRequest
	case failure.ErrAuthorization:
		return http.StatusForbidden
	case failure.ErrState:
		return http.StatusConflict
	case failure.ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse はエラーからレスポンスを組み立てる
func NewErrorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		resp := ErrorResponse{Error: message, Code: he.Code}
		// 入力の形式エラーもドメインの検証エラーと同じ種別で返す
		if he.Code == http.StatusBadRequest {
			resp.Kind = failure.ErrValidation.Error()
		}
		if he.Internal != nil {
			resp.Details = he.Internal.Error()
		}
		return he.Code, resp
	}

	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		return code, ErrorResponse{Error: "内部サーバーエラー", Kind: failure.KindName(err), Code: code}
	}
	return code, ErrorResponse{Error: err.Error(), Kind: failure.KindName(err), Code: code}
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, resp := NewErrorResponse(err)

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.FromContext(c.Request().Context()).Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, resp)
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
