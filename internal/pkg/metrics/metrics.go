package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 台帳操作の総数（operation, result: committed/validation/authorization/state/insufficient_funds/error）
	LedgerOperationsTotal *prometheus.CounterVec

	// 台帳操作のレイテンシ（operation）
	LedgerOperationDuration *prometheus.HistogramVec

	// 返金結果のチケット枚数（outcome: refunded/skipped_insufficient_funds/skipped_ineligible）
	RefundOutcomesTotal *prometheus.CounterVec

	// イベントごとのエスクロー残高
	EscrowBalance *prometheus.GaugeVec

	// 分散ロックの操作時間（operation: acquire/extend/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		LedgerOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Total number of ledger operations by result",
			},
			[]string{"operation", "result"},
		),
		LedgerOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_operation_duration_seconds",
				Help:    "Time spent applying a ledger operation, including the journal write",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		RefundOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refund_outcomes_total",
				Help: "Per-ticket outcomes of refund sweeps",
			},
			[]string{"outcome"},
		),
		EscrowBalance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "escrow_balance",
				Help: "Current escrow balance per event",
			},
			[]string{"event_id"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LedgerOperationsTotal,
		m.LedgerOperationDuration,
		m.RefundOutcomesTotal,
		m.EscrowBalance,
		m.DistributedLockDuration,
	)

	return m
}

// ObserveOperation は台帳操作1件を記録する。nil レシーバでは何もしない
func (m *Metrics) ObserveOperation(operation, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LedgerOperationsTotal.WithLabelValues(operation, result).Inc()
	m.LedgerOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddRefundOutcome は返金結果を枚数分加算する
func (m *Metrics) AddRefundOutcome(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RefundOutcomesTotal.WithLabelValues(outcome).Add(float64(n))
}

// SetEscrowBalance はイベントのエスクロー残高を更新する
func (m *Metrics) SetEscrowBalance(eventID uint64, balance float64) {
	if m == nil {
		return
	}
	m.EscrowBalance.WithLabelValues(strconv.FormatUint(eventID, 10)).Set(balance)
}

// ObserveLock は分散ロック操作の時間を記録する
func (m *Metrics) ObserveLock(operation string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
