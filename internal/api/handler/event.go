package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/application"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/event"
)

type EventHandler struct {
	eventService  EventServiceInterface
	refundService RefundServiceInterface
}

func NewEventHandler(eventService EventServiceInterface, refundService RefundServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService, refundService: refundService}
}

type CreateEventRequest struct {
	Name        string `json:"name" validate:"required" example:"Go Conference 2026"`
	Date        string `json:"date" validate:"required" example:"2026-12-31T18:00:00+09:00"`
	TicketPrice string `json:"ticket_price" validate:"required,decimal" example:"1.0"`
	MaxSupply   uint32 `json:"max_supply" validate:"required,gt=0" example:"500"`
}

type EscrowResponse struct {
	EventID   uint64 `json:"event_id" example:"1"`
	Balance   string `json:"balance" example:"2.0"`
	Deposited string `json:"deposited" example:"3.0"`
	Refunded  string `json:"refunded" example:"1.0"`
}

type EventResponse struct {
	ID          uint64          `json:"id" example:"1"`
	Name        string          `json:"name" example:"Go Conference 2026"`
	Date        string          `json:"date" example:"2026-12-31T18:00:00+09:00"`
	Organizer   string          `json:"organizer" example:"alice"`
	TicketPrice string          `json:"ticket_price" example:"1.0"`
	MaxSupply   uint32          `json:"max_supply" example:"500"`
	TicketsSold uint32          `json:"tickets_sold" example:"120"`
	Remaining   uint32          `json:"remaining" example:"380"`
	Canceled    bool            `json:"canceled" example:"false"`
	CreatedAt   string          `json:"created_at" example:"2026-10-01T10:00:00Z"`
	Escrow      *EscrowResponse `json:"escrow,omitempty"`
}

type EventListResponse struct {
	Count  uint64           `json:"count" example:"2"`
	Events []*EventResponse `json:"events"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Date:        formatTime(e.Date),
		Organizer:   e.Organizer.String(),
		TicketPrice: e.TicketPrice.String(),
		MaxSupply:   e.MaxSupply,
		TicketsSold: e.TicketsSold,
		Remaining:   e.Remaining(),
		Canceled:    e.Canceled,
		CreatedAt:   formatTime(e.CreatedAt),
	}
}

func toEscrowResponse(a *escrow.Account) *EscrowResponse {
	return &EscrowResponse{
		EventID:   a.EventID,
		Balance:   a.Balance.String(),
		Deposited: a.Deposited.String(),
		Refunded:  a.Refunded.String(),
	}
}

// Create godoc
// @Summary イベントを作成
// @Description 呼び出し元を主催者としてイベントを作成します
// @Tags events
// @Accept json
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param preflight query bool false "検証のみ"
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	var req CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開催日時の形式が不正です").SetInternal(err)
	}
	price, err := parseAmount(req.TicketPrice)
	if err != nil {
		return err
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Caller:      caller,
		Name:        req.Name,
		Date:        date,
		TicketPrice: price,
		MaxSupply:   req.MaxSupply,
		DryRun:      isPreflight(c),
	})
	if err != nil {
		return err
	}
	if e == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary イベントを取得
// @Description 指定IDのイベントとエスクロー残高を取得します
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	snap, err := h.eventService.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	resp := toEventResponse(&snap.Event)
	resp.Escrow = toEscrowResponse(&snap.Escrow)
	return c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary イベント一覧を取得
// @Tags events
// @Produce json
// @Success 200 {object} EventListResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	events, count := h.eventService.ListEvents(c.Request().Context())

	responses := make([]*EventResponse, len(events))
	for i := range events {
		responses[i] = toEventResponse(&events[i])
	}
	return c.JSON(http.StatusOK, EventListResponse{Count: count, Events: responses})
}

// Cancel godoc
// @Summary イベントを中止
// @Description 主催者だけが中止できます。有効な出品は取り下げられます
// @Tags events
// @Produce json
// @Param X-Caller-ID header string true "呼び出し元"
// @Param id path int true "イベントID"
// @Success 200 {object} EventResponse
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id}/cancel [post]
func (h *EventHandler) Cancel(c echo.Context) error {
	caller, err := callerOf(c)
	if err != nil {
		return err
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	e, err := h.eventService.CancelEvent(c.Request().Context(), caller, id, isPreflight(c))
	if err != nil {
		return err
	}
	if e == nil {
		return preflightOK(c)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Escrow godoc
// @Summary エスクロー残高を取得
// @Tags events
// @Produce json
// @Param id path int true "イベントID"
// @Success 200 {object} EscrowResponse
// @Router /events/{id}/escrow [get]
func (h *EventHandler) Escrow(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	account, err := h.eventService.Escrow(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEscrowResponse(account))
}
