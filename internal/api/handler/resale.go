package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/listing"
)

type ResaleHandler struct {
	resaleService ResaleServiceInterface
}

func NewResaleHandler(resaleService ResaleServiceInterface) *ResaleHandler {
	return &ResaleHandler{resaleService: resaleService}
}

type ResellTicketRequest struct {
	Price string `json:"price" validate:"required,decimal" example:"1.05"`
}

type BuyResaleRequest struct {
	AttachedAmount string `json:"attached_amount" validate:"required,decimal" example:"1.05"`
}

type ListingResponse struct {
	TokenID  uint64  `json:"token_id" example:"1"`
	EventID  uint64  `json:"event_id,omitempty" example:"1"`
	Seller   string  `json:"seller" example:"bob"`
	Price    string  `json:"price" example:"1.05"`
	Active   bool    `json:"active" example:"true"`
	Outcome  string  `json:"outcome" example:"open"`
	ListedAt string  `json:"listed_at" example:"2026-10-01T10:00:00Z"`
	ClosedAt *string `json:"closed_at,omitempty"`
}

type ResaleCapResponse struct {
	TokenID   uint64 `json:"token_id" example:"1"`
	ResaleCap string `json:"resale_cap" example:"1.10"`
}

func toListingResponse(l *listing.Listing) *ListingResponse {
	resp := &ListingResponse{
		TokenID:  l.TokenID,
		Seller:   l.Seller.String(),
		Price:    l.Price.String(),
		Active:   l.Active,
		Outcome:  string(l.Outcome),
		ListedAt: formatTime(l.ListedAt),
	}
	if l.ClosedAt != nil {
		closed := formatTime(*l.ClosedAt)
		resp.ClosedAt = &closed
	}
	return resp
}

// Resell godoc
// @Summary 転売に出品
// @Description 最終支払額の110%以内で出品します。出品中のチケットは取り消してから出し直します
// @Tags resale
// @Accept json
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param tokenId path int true "トークンID"
// @Param request body ResellTicketRequest true "出品価格"
// @Success 201 {object} ListingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 403 {object} api.ErrorResponse
// @Router /tickets/{tokenId}/listing [post]
func (h *ResaleHandler) Resell(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}
	var req ResellTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		return err
	}

	l, err := h.resaleService.ResellTicket(c.Request().Context(), application.ResellTicketInput{
		Caller:  caller,
		TokenID: tokenID,
		Price:   price,
		DryRun:  isPreflight(c),
	})
	if err != nil {
		return err
	}
	if l == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

// CancelListing godoc
// @Summary 出品を取り消す
// @Tags resale
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param tokenId path int true "トークンID"
// @Success 200 {object} ListingResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /tickets/{tokenId}/listing [delete]
func (h *ResaleHandler) CancelListing(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}

	l, err := h.resaleService.CancelResale(c.Request().Context(), caller, tokenID, isPreflight(c))
	if err != nil {
		return err
	}
	if l == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Purchase godoc
// @Summary 転売チケットを購入
// @Description 出品価格ちょうどを支払います。代金は出品者に渡ります
// @Tags resale
// @Accept json
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param tokenId path int true "トークンID"
// @Param request body BuyResaleRequest true "支払額"
// @Success 200 {object} TicketResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /tickets/{tokenId}/purchase [post]
func (h *ResaleHandler) Purchase(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}
	var req BuyResaleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	amount, err := parseAmount(req.AttachedAmount)
	if err != nil {
		return err
	}

	t, err := h.resaleService.BuyResale(c.Request().Context(), application.BuyResaleInput{
		Caller:         caller,
		TokenID:        tokenID,
		AttachedAmount: amount,
		DryRun:         isPreflight(c),
	})
	if err != nil {
		return err
	}
	if t == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

// GetListing godoc
// @Summary 直近の出品を取得
// @Tags resale
// @Produce json
// @Param tokenId path int true "トークンID"
// @Success 200 {object} ListingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /tickets/{tokenId}/listing [get]
func (h *ResaleHandler) GetListing(c echo.Context) error {
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}
	l, err := h.resaleService.Listing(c.Request().Context(), tokenID)
	if err != nil {
		return err
	}
	if l == nil {
		return echo.NewHTTPError(http.StatusNotFound, "出品がありません")
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// ResaleCap godoc
// @Summary 転売上限価格
// @Tags resale
// @Produce json
// @Param tokenId path int true "トークンID"
// @Success 200 {object} ResaleCapResponse
// @Router /tickets/{tokenId}/resale-cap [get]
func (h *ResaleHandler) ResaleCap(c echo.Context) error {
	tokenID, err := idParam(c, "tokenId")
	if err != nil {
		return err
	}
	resaleCap, err := h.resaleService.ResaleCap(c.Request().Context(), tokenID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ResaleCapResponse{TokenID: tokenID, ResaleCap: resaleCap.String()})
}

// ActiveListings godoc
// @Summary 有効な出品一覧
// @Tags resale
// @Produce json
// @Success 200 {array} ListingResponse
// @Router /listings [get]
func (h *ResaleHandler) ActiveListings(c echo.Context) error {
	active := h.resaleService.ActiveListings(c.Request().Context())

	responses := make([]*ListingResponse, len(active))
	for i := range active {
		resp := toListingResponse(&active[i].Listing)
		resp.EventID = active[i].EventID
		responses[i] = resp
	}
	return c.JSON(http.StatusOK, responses)
}
