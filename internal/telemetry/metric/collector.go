package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/rehashkv/pkg/dict"
)

// StatsSource is anything that can report dictionary statistics.
type StatsSource interface {
	Stats() dict.Stats
}

// DictCollector exports dictionary statistics on every scrape.
type DictCollector struct {
	src StatsSource

	keys       *prometheus.Desc
	buckets    *prometheus.Desc
	migrating  *prometheus.Desc
	migrations *prometheus.Desc
	moved      *prometheus.Desc
}

// NewDictCollector creates a collector reading from src.
func NewDictCollector(src StatsSource) *DictCollector {
	return &DictCollector{
		src: src,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dict", "keys"),
			"Number of keys stored", nil, nil),
		buckets: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dict", "buckets"),
			"Bucket count per table", []string{"table"}, nil),
		migrating: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dict", "migrating"),
			"1 while an incremental rehash is in progress", nil, nil),
		migrations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dict", "migrations_total"),
			"Total incremental rehashes started", nil, nil),
		moved: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "dict", "entries_moved_total"),
			"Total entries moved from the old table", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *DictCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.buckets
	ch <- c.migrating
	ch <- c.migrations
	ch <- c.moved
}

// Collect implements prometheus.Collector.
func (c *DictCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()

	migrating := 0.0
	if st.Migrating {
		migrating = 1
	}

	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Size))
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(st.PrimaryBuckets), "primary")
	ch <- prometheus.MustNewConstMetric(c.buckets, prometheus.GaugeValue, float64(st.SecondaryBuckets), "secondary")
	ch <- prometheus.MustNewConstMetric(c.migrating, prometheus.GaugeValue, migrating)
	ch <- prometheus.MustNewConstMetric(c.migrations, prometheus.CounterValue, float64(st.Migrations))
	ch <- prometheus.MustNewConstMetric(c.moved, prometheus.CounterValue, float64(st.EntriesMoved))
}
