package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-marketplace/internal/domain/principal"
	"github.com/sanosuguru/go-ticket-marketplace/internal/ledger"
)

func TestPrincipalHandler_Tickets(t *testing.T) {
	e, m := newMockRouter()
	m.ticket.On("TicketsOf", mock.Anything, principal.ID("bob")).Return([]ledger.OwnedTicket{
		{Ticket: *sampleTicket(), EventName: "Go Conference", Listed: true},
	})
	m.ticket.On("TicketsOf", mock.Anything, principal.ID("nobody")).Return([]ledger.OwnedTicket{})

	rec := serve(e, http.MethodGet, "/api/v1/principals/bob/tickets", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp []OwnedTicketResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, uint64(1), resp[0].TokenID)
	assert.Equal(t, "Go Conference", resp[0].EventName)
	assert.True(t, resp[0].Listed)

	rec = serve(e, http.MethodGet, "/api/v1/principals/nobody/tickets", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestPrincipalHandler_Balance(t *testing.T) {
	e, m := newMockRouter()
	m.ticket.On("BalanceOf", mock.Anything, principal.ID("bob")).Return(dec("1.05"))

	rec := serve(e, http.MethodGet, "/api/v1/principals/bob/balance", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"principal":"bob","balance":"1.05"}`, rec.Body.String())
}
