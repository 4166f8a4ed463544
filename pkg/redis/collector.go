package redis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

type poolStatser interface {
	PoolStats() *redis.PoolStats
}

type poolCollector struct {
	src poolStatser

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	timeouts   *prometheus.Desc
	totalConns *prometheus.Desc
	idleConns  *prometheus.Desc
	staleConns *prometheus.Desc
}

// NewPoolCollector exports the connection pool counters of c. It returns
// nil for a client without a live connection.
func NewPoolCollector(namespace string, c *Client) prometheus.Collector {
	if c == nil || c.raw == nil {
		return nil
	}
	return newPoolCollector(namespace, c.raw)
}

func newPoolCollector(namespace string, src poolStatser) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "redis_pool", name), help, nil, nil)
	}
	return &poolCollector{
		src:        src,
		hits:       desc("hits_total", "Times a free connection was found in the pool."),
		misses:     desc("misses_total", "Times a free connection was not found in the pool."),
		timeouts:   desc("timeouts_total", "Times a wait for a connection timed out."),
		totalConns: desc("connections", "Connections currently held by the pool."),
		idleConns:  desc("idle_connections", "Idle connections in the pool."),
		staleConns: desc("stale_connections_total", "Stale connections removed from the pool."),
	}
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- p.hits
	ch <- p.misses
	ch <- p.timeouts
	ch <- p.totalConns
	ch <- p.idleConns
	ch <- p.staleConns
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stats := p.src.PoolStats()
	if stats == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(p.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(p.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(p.timeouts, prometheus.CounterValue, float64(stats.Timeouts))
	ch <- prometheus.MustNewConstMetric(p.totalConns, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(p.idleConns, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(p.staleConns, prometheus.CounterValue, float64(stats.StaleConns))
}
