package storemetrics

import (
	"sync"

	indexedstore "github.com/karupanerura/indexed-store"
	"github.com/prometheus/client_golang/prometheus"
)

// StatsSource is implemented by MapStore and ArrayStore.
type StatsSource interface {
	Stats() indexedstore.Stats
}

// Collector is a prometheus.Collector reporting the size of one store.
//
// Stores are not safe for concurrent use and Prometheus collects from the scraping goroutine,
// so a store that is mutated while being scraped needs a locker shared with its writers.
type Collector struct {
	source StatsSource
	locker sync.Locker

	records           *prometheus.Desc
	indexBuckets      *prometheus.Desc
	indexEmptyBuckets *prometheus.Desc
	indexEntries      *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option interface {
	apply(*Collector)
}

type optionFunc func(*Collector)

func (f optionFunc) apply(c *Collector) {
	f(c)
}

// WithLocker makes the collector hold the locker while reading the store's statistics.
func WithLocker(locker sync.Locker) Option {
	return optionFunc(func(c *Collector) {
		c.locker = locker
	})
}

// NewCollector creates a Collector for the store. name is attached to every metric as the "store" label.
func NewCollector(name string, source StatsSource, opts ...Option) *Collector {
	constLabels := prometheus.Labels{"store": name}
	c := &Collector{
		source: source,

		records: prometheus.NewDesc(
			"indexedstore_records",
			"Number of records in the store",
			nil, constLabels,
		),
		indexBuckets: prometheus.NewDesc(
			"indexedstore_index_buckets",
			"Number of distinct values seen by the index",
			[]string{"index"}, constLabels,
		),
		indexEmptyBuckets: prometheus.NewDesc(
			"indexedstore_index_empty_buckets",
			"Number of index buckets left empty by removals",
			[]string{"index"}, constLabels,
		),
		indexEntries: prometheus.NewDesc(
			"indexedstore_index_entries",
			"Number of primary keys filed in the index",
			[]string{"index"}, constLabels,
		),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.indexBuckets
	ch <- c.indexEmptyBuckets
	ch <- c.indexEntries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.stats()

	ch <- prometheus.MustNewConstMetric(
		c.records,
		prometheus.GaugeValue,
		float64(stats.Records),
	)
	for name, idx := range stats.Indexes {
		ch <- prometheus.MustNewConstMetric(
			c.indexBuckets,
			prometheus.GaugeValue,
			float64(idx.Buckets),
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			c.indexEmptyBuckets,
			prometheus.GaugeValue,
			float64(idx.EmptyBuckets),
			name,
		)
		ch <- prometheus.MustNewConstMetric(
			c.indexEntries,
			prometheus.GaugeValue,
			float64(idx.Entries),
			name,
		)
	}
}

func (c *Collector) stats() indexedstore.Stats {
	if c.locker != nil {
		c.locker.Lock()
		defer c.locker.Unlock()
	}
	return c.source.Stats()
}
