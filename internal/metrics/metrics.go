// Package metrics 导出 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 服务指标；nil 接收者上的方法均为空操作
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	planImports       *prometheus.CounterVec
	stylesParsed      prometheus.Counter
	importDuration    prometheus.Histogram
	changeovers       *prometheus.CounterVec
	notifyErrors      prometheus.Counter
}

// New 创建指标并注册到独立的 Registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		planImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linechange_plan_imports_total",
			Help: "Production plan imports by result.",
		}, []string{"result"}),
		stylesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linechange_plan_styles_parsed_total",
			Help: "Style runs reconstructed from imported plans.",
		}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linechange_plan_import_duration_seconds",
			Help:    "Histogram of production plan import durations.",
			Buckets: prometheus.DefBuckets,
		}),
		changeovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linechange_changeovers_total",
			Help: "Changeover records by stage (built, saved, failed).",
		}, []string{"stage"}),
		notifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linechange_notify_errors_total",
			Help: "Changeover events that failed to publish.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.planImports,
		m.stylesParsed,
		m.importDuration,
		m.changeovers,
		m.notifyErrors,
	)
	return m
}

// Registry 底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware gin 请求计数与耗时；未匹配路由记为 "unmatched"
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// PlanImported 记录一次排产表导入
func (m *Metrics) PlanImported(duration time.Duration, styles int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.planImports.WithLabelValues("error").Inc()
		return
	}
	m.planImports.WithLabelValues("ok").Inc()
	m.stylesParsed.Add(float64(styles))
	m.importDuration.Observe(duration.Seconds())
}

// Changeover 记录换款记录阶段
func (m *Metrics) Changeover(stage string) {
	if m == nil {
		return
	}
	m.changeovers.WithLabelValues(stage).Inc()
}

// NotifyFailed 记录事件推送失败
func (m *Metrics) NotifyFailed() {
	if m == nil {
		return
	}
	m.notifyErrors.Inc()
}
