package metrics

import (
	"context"
	"time"
)

// StatsSource is the subset of the object store a Collector needs to
// refresh the gauges in this package. internal/store implements it.
type StatsSource interface {
	CountDocuments(ctx context.Context) (int64, error)
	CountObjects(ctx context.Context) (int64, error)
}

// Collector periodically refreshes the store-derived gauges. Counters and
// histograms are updated inline by the packages that own the operations
// they describe; Collector exists only for state that has to be polled.
type Collector struct {
	source StatsSource
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector over source.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a fixed interval until Stop is called.
func (c *Collector) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if docs, err := c.source.CountDocuments(ctx); err == nil {
		StoreDocumentsTotal.Set(float64(docs))
	}
	if objs, err := c.source.CountObjects(ctx); err == nil {
		StoreObjectsTotal.Set(float64(objs))
	}
}
