package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	ledger VersionReader
}

// NewHealthHandler はHealthHandlerを作成する。ledger は nil でもよい
func NewHealthHandler(ledger VersionReader) *HealthHandler {
	return &HealthHandler{ledger: ledger}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	LedgerVersion uint64 `json:"ledger_version"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションの健全性と台帳のコミット済みバージョンを返す
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if h.ledger != nil {
		resp.LedgerVersion = h.ledger.Version()
	}
	return c.JSON(http.StatusOK, resp)
}
