// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果ラベルの値
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordStoreOperation(operation, result string, duration time.Duration)
	RecordLogin(result string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	storeOps       *prometheus.CounterVec
	storeOpLatency *prometheus.HistogramVec
	logins         *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storelist_store_operations_total",
			Help: "店舗リポジトリ操作の合計数（操作種別・結果別）",
		}, []string{"operation", "result"}),
		storeOpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storelist_store_operation_duration_seconds",
			Help:    "店舗リポジトリ操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storelist_logins_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storelist_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.storeOps,
		c.storeOpLatency,
		c.logins,
		c.httpStatus,
	)

	return c
}

// RecordStoreOperation は店舗操作の結果とレイテンシを記録する。
func (c *Collector) RecordStoreOperation(operation, result string, duration time.Duration) {
	c.storeOps.WithLabelValues(operation, result).Inc()
	c.storeOpLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLogin はログイン試行を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordStoreOperation(string, string, time.Duration) {}
func (Nop) RecordLogin(string)                                 {}
func (Nop) RecordHTTPStatus(int)                               {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
