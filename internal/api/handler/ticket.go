package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/ticket"
)

type TicketHandler struct {
	ticketService TicketServiceInterface
}

func NewTicketHandler(ticketService TicketServiceInterface) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// MintTicketRequest の to を省略すると呼び出し元に発行する
type MintTicketRequest struct {
	To             string `json:"to" example:"bob"`
	AttachedAmount string `json:"attached_amount" validate:"omitempty,decimal" example:"1.0"`
}

type TicketResponse struct {
	TokenID       uint64  `json:"token_id" example:"1"`
	EventID       uint64  `json:"event_id" example:"1"`
	Owner         string  `json:"owner" example:"bob"`
	PaidAmount    *string `json:"paid_amount" example:"1.0"`
	LastPaidPrice string  `json:"last_paid_price" example:"1.0"`
	ResaleCap     string  `json:"resale_cap" example:"1.10"`
	Used          bool    `json:"used" example:"false"`
	Refunded      bool    `json:"refunded" example:"false"`
	MintedAt      string  `json:"minted_at" example:"2026-10-01T10:00:00Z"`
}

type TotalSupplyResponse struct {
	TotalSupply uint64 `json:"total_supply" example:"42"`
}

func toTicketResponse(t *ticket.Ticket) *TicketResponse {
	resp := &TicketResponse{
		TokenID:       t.TokenID,
		EventID:       t.EventID,
		Owner:         t.Owner.String(),
		LastPaidPrice: t.LastPaidPrice().String(),
		ResaleCap:     t.ResaleCap().String(),
		Used:          t.Used,
		Refunded:      t.Refunded,
		MintedAt:      formatTime(t.MintedAt),
	}
	if t.PaidAmount != nil {
		paid := t.PaidAmount.String()
		resp.PaidAmount = &paid
	}
	return resp
}

// Mint godoc
// @Summary チケットを発行
// @Description 一次販売（価格ちょうどの支払い）または主催者による無償発行
// @Tags tickets
// @Accept json
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param id path int true "イベントID"
// @Param request body MintTicketRequest true "発行内容"
// @Success 201 {object} TicketResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id}/tickets [post]
func (h *TicketHandler) Mint(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	eventID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req MintTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	amount, err := parseAmount(req.AttachedAmount)
	if err != nil {
		return err
	}

	to := principal.Parse(req.To)
	if to.IsZero() {
		to = caller
	}

	t, err := h.ticketService.MintTicket(c.Request().Context(), application.MintTicketInput{
		Caller:         caller,
		EventID:        eventID,
		To:             to,
		AttachedAmount: amount,
		DryRun:         isPreflight(c),
	})
	if err != nil {
		return err
	}
	if t == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusCreated, toTicketResponse(t))
}

// GetByID godoc
// @Summary チケットを取得
// @Description 所有者、イベント、使用済み・返金済みフラグを返します
// @Tags tickets
// @Produce json
// @Param tokenId path int true "トークンID"
// @Success 200 {object} TicketResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /tickets/{tokenId} [get]
func (h *TicketHandler) GetByID(c echo.Context) error {
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}
	t, err := h.ticketService.GetTicket(c.Request().Context(), tokenID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// Validate godoc
// @Summary 入場処理
// @Tags tickets
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param tokenId path int true "トークンID"
// @Success 200 {object} TicketResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /tickets/{tokenId}/validate [post]
func (h *TicketHandler) Validate(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}

	t, err := h.ticketService.ValidateTicket(c.Request().Context(), caller, tokenID, isPreflight(c))
	if err != nil {
		return err
	}
	if t == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// TotalSupply godoc
// @Summary 発行済みチケット総数
// @Tags tickets
// @Produce json
// @Success 200 {object} TotalSupplyResponse
// @Router /tickets [get]
func (h *TicketHandler) TotalSupply(c echo.Context) error {
	return c.JSON(http.StatusOK, TotalSupplyResponse{
		TotalSupply: h.ticketService.TotalSupply(c.Request().Context()),
	})
}
