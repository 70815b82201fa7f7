package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-ticket-marketplace/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-marketplace/internal/config"
	"github.com/sanosuguru/go-ticket-marketplace/internal/pkg/metrics"
)

// Handlers はルーティングに使うハンドラーの組
type Handlers struct {
	Event     *EventHandler
	Ticket    *TicketHandler
	Resale    *ResaleHandler
	Principal *PrincipalHandler
	Health    *HealthHandler
}

// RouteOptions はメトリクス公開の設定。Metrics が nil なら /metrics を公開しない
type RouteOptions struct {
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	MetricsAuth config.MetricsConfig
}

// RegisterRoutes は /api/v1 配下のルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers, opts RouteOptions) {
	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics))

		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics",
			echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(opts.MetricsAuth),
		)
	}

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	// 更新系は呼び出し元が必須
	auth := middleware.RequireCaller()

	v1.POST("/events", h.Event.Create, auth)
	v1.GET("/events", h.Event.List)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.POST("/events/:id/cancel", h.Event.Cancel, auth)
	v1.POST("/events/:id/refund", h.Event.Refund, auth)
	v1.GET("/events/:id/escrow", h.Event.Escrow)
	v1.POST("/events/:id/tickets", h.Ticket.Mint, auth)

	v1.GET("/tickets", h.Ticket.TotalSupply)
	v1.GET("/tickets/:tokenId", h.Ticket.GetByID)
	v1.POST("/tickets/:tokenId/validate", h.Ticket.Validate, auth)
	v1.GET("/tickets/:tokenId/resale-cap", h.Resale.ResaleCap)
	v1.GET("/tickets/:tokenId/listing", h.Resale.GetListing)
	v1.POST("/tickets/:tokenId/listing", h.Resale.Resell, auth)
	v1.DELETE("/tickets/:tokenId/listing", h.Resale.CancelListing, auth)
	v1.POST("/tickets/:tokenId/purchase", h.Resale.Purchase, auth)

	v1.GET("/listings", h.Resale.ActiveListings)

	v1.GET("/principals/:id/tickets", h.Principal.Tickets)
	v1.GET("/principals/:id/balance", h.Principal.Balance)
}
