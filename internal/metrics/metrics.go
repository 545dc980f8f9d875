// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやワーカーから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(statusCode int, duration time.Duration)
	RecordSMSSendSuccess()
	RecordSMSSendFailure()
	RecordChainTxFailure(kind string)
	RecordPaymentsIndexed(count int)
	RecordIndexerCycleDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	httpLatency     prometheus.Histogram
	smsSendSuccess  prometheus.Counter
	smsSendFail     prometheus.Counter
	chainTxFail     *prometheus.CounterVec
	paymentsIndexed prometheus.Counter
	indexerCycle    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paylink_http_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		smsSendSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_sms_send_success_total",
			Help: "SMS認証コード送信成功の合計数",
		}),
		smsSendFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_sms_send_fail_total",
			Help: "SMS認証コード送信失敗の合計数",
		}),
		chainTxFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_chain_tx_fail_total",
			Help: "チェーントランザクション失敗のエラー種別ごとの合計数",
		}, []string{"kind"}),
		paymentsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paylink_payments_indexed_total",
			Help: "インデックスされた支払いイベントの合計数",
		}),
		indexerCycle: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "paylink_indexer_cycle_seconds",
			Help:    "インデクサー1サイクルの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.smsSendSuccess,
		c.smsSendFail,
		c.chainTxFail,
		c.paymentsIndexed,
		c.indexerCycle,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストのステータスとレイテンシを記録する。
func (c *Collector) RecordHTTPRequest(statusCode int, duration time.Duration) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordSMSSendSuccess はSMS送信成功を記録する。
func (c *Collector) RecordSMSSendSuccess() {
	c.smsSendSuccess.Inc()
}

// RecordSMSSendFailure はSMS送信失敗を記録する。
func (c *Collector) RecordSMSSendFailure() {
	c.smsSendFail.Inc()
}

// RecordChainTxFailure はチェーントランザクション失敗をエラー種別付きで記録する。
func (c *Collector) RecordChainTxFailure(kind string) {
	c.chainTxFail.WithLabelValues(kind).Inc()
}

// RecordPaymentsIndexed はインデックスされた支払いイベント数を記録する。
func (c *Collector) RecordPaymentsIndexed(count int) {
	c.paymentsIndexed.Add(float64(count))
}

// RecordIndexerCycleDuration はインデクサー1サイクルの所要時間を記録する。
func (c *Collector) RecordIndexerCycleDuration(duration time.Duration) {
	c.indexerCycle.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
