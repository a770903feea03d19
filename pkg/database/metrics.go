package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is implemented by *pgxpool.Pool.
type StatSource interface {
	Stat() *pgxpool.Stat
}

type poolMetric struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolCollector exports pgxpool statistics.
type PoolCollector struct {
	src     StatSource
	metrics []poolMetric
}

func NewPoolCollector(src StatSource) *PoolCollector {
	d := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("respira_db_pool_"+name, help, nil, nil)
	}
	gauge, counter := prometheus.GaugeValue, prometheus.CounterValue
	return &PoolCollector{src: src, metrics: []poolMetric{
		{d("acquired_connections", "Connections currently in use."), gauge, func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{d("idle_connections", "Idle connections."), gauge, func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		{d("total_connections", "Open connections."), gauge, func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		{d("max_connections", "Configured pool size."), gauge, func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
		{d("acquire_total", "Connection acquisitions."), counter, func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }},
		{d("acquire_seconds_total", "Time spent acquiring connections."), counter, func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }},
		{d("empty_acquire_total", "Acquisitions that had to wait."), counter, func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }},
		{d("canceled_acquire_total", "Acquisitions canceled by context."), counter, func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }},
	}}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.kind, m.value(s))
	}
}

// RegisterPoolMetrics registers a PoolCollector with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, src StatSource) error {
	return reg.Register(NewPoolCollector(src))
}
