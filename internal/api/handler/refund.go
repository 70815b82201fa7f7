package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

type RefundResultResponse struct {
	TokenID uint64 `json:"token_id" example:"1"`
	Owner   string `json:"owner" example:"bob"`
	Amount  string `json:"amount" example:"1.0"`
	Outcome string `json:"outcome" example:"refunded"`
	Reason  string `json:"reason,omitempty"`
}

type RefundReportResponse struct {
	EventID       uint64                 `json:"event_id" example:"1"`
	Status        string                 `json:"status" example:"partial"`
	RefundedCount int                    `json:"refunded_count" example:"1"`
	RefundedTotal string                 `json:"refunded_total" example:"1.10"`
	SkippedFunds  int                    `json:"skipped_insufficient_funds" example:"1"`
	Results       []RefundResultResponse `json:"results"`
}

func toRefundReportResponse(r *ledger.RefundReport) *RefundReportResponse {
	results := make([]RefundResultResponse, len(r.Results))
	for i, res := range r.Results {
		results[i] = RefundResultResponse{
			TokenID: res.TokenID,
			Owner:   res.Owner.String(),
			Amount:  res.Amount.String(),
			Outcome: string(res.Outcome),
			Reason:  res.Reason,
		}
	}
	return &RefundReportResponse{
		EventID:       r.EventID,
		Status:        string(r.Status),
		RefundedCount: r.RefundedCount,
		RefundedTotal: r.RefundedTotal.String(),
		SkippedFunds:  r.SkippedFunds,
		Results:       results,
	}
}

// Refund godoc
// @Summary 中止イベントの払い戻し
// @Description 払い戻し可能なチケットをエスクローの範囲で1枚ずつ返金します。再実行できます
// @Tags events
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param id path int true "イベントID"
// @Success 200 {object} RefundReportResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id}/refund [post]
func (h *EventHandler) Refund(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	report, err := h.refundService.RefundEvent(c.Request().Context(), caller, id, isPreflight(c))
	if err != nil {
		return err
	}
	if report == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusOK, toRefundReportResponse(report))
}
