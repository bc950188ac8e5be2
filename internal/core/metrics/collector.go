package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "epmd"

// Collector 基于 Prometheus 的 Reporter 实现
type Collector struct {
	registry *prometheus.Registry

	nodes        prometheus.Gauge
	conns        prometheus.Gauge
	connsTotal   prometheus.Counter
	evictions    prometheus.Counter
	requests     *prometheus.CounterVec
	acceptErrors *prometheus.CounterVec
	bytesIn      prometheus.Counter
	bytesOut     prometheus.Counter
}

var _ Reporter = (*Collector)(nil)

// NewCollector 创建指标收集器
//
// withRuntime 为 true 时同时注册 Go 运行时与进程指标。
func NewCollector(withRuntime bool) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Number of registered nodes.",
		}),
		conns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open client connections.",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total accepted client connections.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Connections closed by the idle timeout.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Decoded request frames by opcode.",
		}, []string{"op"}),
		acceptErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accept_errors_total",
			Help:      "Accept failures by kind.",
		}, []string{"kind"}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Bytes read from clients.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_sent_total",
			Help:      "Bytes written to clients.",
		}),
	}

	c.registry.MustRegister(
		c.nodes, c.conns, c.connsTotal, c.evictions,
		c.requests, c.acceptErrors, c.bytesIn, c.bytesOut,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics HTTP 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ConnOpened 实现 Reporter
func (c *Collector) ConnOpened() {
	c.conns.Inc()
	c.connsTotal.Inc()
}

// ConnClosed 实现 Reporter
func (c *Collector) ConnClosed() {
	c.conns.Dec()
}

// ConnEvicted 实现 Reporter
func (c *Collector) ConnEvicted() {
	c.evictions.Inc()
}

// Request 实现 Reporter
func (c *Collector) Request(op string) {
	c.requests.WithLabelValues(op).Inc()
}

// AcceptError 实现 Reporter
func (c *Collector) AcceptError(kind string) {
	c.acceptErrors.WithLabelValues(kind).Inc()
}

// SetNodes 实现 Reporter
func (c *Collector) SetNodes(n int) {
	c.nodes.Set(float64(n))
}

// LogRecvMessage 实现 Reporter
func (c *Collector) LogRecvMessage(n int64) {
	c.bytesIn.Add(float64(n))
}

// LogSentMessage 实现 Reporter
func (c *Collector) LogSentMessage(n int64) {
	c.bytesOut.Add(float64(n))
}
