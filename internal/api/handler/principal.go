package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
)

type PrincipalHandler struct {
	ticketService TicketServiceInterface
}

func NewPrincipalHandler(ticketService TicketServiceInterface) *PrincipalHandler {
	return &PrincipalHandler{ticketService: ticketService}
}

type OwnedTicketResponse struct {
	*TicketResponse
	EventName     string `json:"event_name" example:"Go Conference 2026"`
	EventCanceled bool   `json:"event_canceled" example:"false"`
	Listed        bool   `json:"listed" example:"false"`
}

type BalanceResponse struct {
	Principal string `json:"principal" example:"bob"`
	Balance   string `json:"balance" example:"1.10"`
}

func principalParam(c echo.Context) (principal.ID, error) {
	p := principal.Parse(c.Param("id"))
	if p.IsZero() {
		return "", echo.NewHTTPError(http.StatusBadRequest, "principal が空です")
	}
	return p, nil
}

// Tickets godoc
// @Summary 所有チケット一覧
// @Tags principals
// @Produce json
// @Param id path string true "principal"
// @Success 200 {array} OwnedTicketResponse
// @Router /principals/{id}/tickets [get]
func (h *PrincipalHandler) Tickets(c echo.Context) error {
	owner, err := principalParam(c)
	if err != nil {
		return err
	}
	owned := h.ticketService.TicketsOf(c.Request().Context(), owner)

	responses := make([]OwnedTicketResponse, len(owned))
	for i := range owned {
		responses[i] = OwnedTicketResponse{
			TicketResponse: toTicketResponse(&owned[i].Ticket),
			EventName:      owned[i].EventName,
			EventCanceled:  owned[i].EventCanceled,
			Listed:         owned[i].Listed,
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// Balance godoc
// @Summary 台帳から受け取った累計額
// @Description 転売代金と返金の合計
// @Tags principals
// @Produce json
// @Param id path string true "principal"
// @Success 200 {object} BalanceResponse
// @Router /principals/{id}/balance [get]
func (h *PrincipalHandler) Balance(c echo.Context) error {
	p, err := principalParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BalanceResponse{
		Principal: p.String(),
		Balance:   h.ticketService.BalanceOf(c.Request().Context(), p).String(),
	})
}
