// Package metrics 提供基于Prometheus的指标收集
//
// 指标通过/metrics端点暴露，由Prometheus定期抓取。
// HTTP维度的指标由gin中间件写入，借阅域指标由对应用例写入。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP请求指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（秒）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅域指标

	// OrdersCreatedTotal 借阅订单创建总数
	OrdersCreatedTotal prometheus.Counter

	// OrdersReturnedTotal 借阅订单归还总数
	OrdersReturnedTotal prometheus.Counter

	// BooksRentedTotal 直接借书操作总数
	BooksRentedTotal prometheus.Counter

	// BooksReturnedTotal 直接还书操作总数
	BooksReturnedTotal prometheus.Counter

	// ActiveRentals 当前处于借出状态的图书数
	ActiveRentals prometheus.Gauge

	// CascadeExecutionsTotal 删除级联执行总数
	// 标签：cascade（book/user）、result（success/failure）
	CascadeExecutionsTotal *prometheus.CounterVec

	// ActivityWriteFailuresTotal 活动日志写入失败总数
	// 写入失败不影响主操作，但需要可观测
	ActivityWriteFailuresTotal prometheus.Counter
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次，注册所有指标到默认Registry
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "Number of HTTP requests currently being served",
		},
	)

	OrdersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of rental orders created",
		},
	)

	OrdersReturnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_returned_total",
			Help: "Total number of rental orders returned",
		},
	)

	BooksRentedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_rented_total",
			Help: "Total number of direct book rent operations",
		},
	)

	BooksReturnedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "books_returned_total",
			Help: "Total number of direct book return operations",
		},
	)

	ActiveRentals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rentals",
			Help: "Number of books currently rented out",
		},
	)

	CascadeExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_executions_total",
			Help: "Total number of delete cascade executions",
		},
		[]string{"cascade", "result"},
	)

	ActivityWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_write_failures_total",
			Help: "Total number of failed activity log writes",
		},
	)
}

// IncCounter 安全递增Counter（未初始化时不panic）
func IncCounter(counter prometheus.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

// IncCounterVec 安全递增带标签的Counter
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter != nil {
		counter.With(labels).Inc()
	}
}

// IncGauge 安全递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge != nil {
		gauge.Inc()
	}
}

// DecGauge 安全递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge != nil {
		gauge.Dec()
	}
}

// ObserveHistogramVec 安全记录带标签的Histogram观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram != nil {
		histogram.With(labels).Observe(value)
	}
}
