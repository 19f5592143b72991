package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fllarpy/room-analytics/domain"
)

// Gauge receives the number of rooms seen so far. telemetry.Metrics
// implements it.
type Gauge interface {
	SetRoomsTracked(n int)
}

// roomCollector periodically snapshots the counter store so the rooms
// gauge stays current without touching the intake path.
type roomCollector struct {
	store  domain.CounterReader
	gauge  Gauge
	logged int
}

// Start launches a background goroutine that refreshes the rooms gauge every
// interval. It returns a function that stops the goroutine; calling it more
// than once is safe.
func Start(store domain.CounterReader, interval time.Duration, gauge Gauge) (stop func()) {
	c := &roomCollector{store: store, gauge: gauge, logged: -1}

	done := make(chan struct{})
	var once sync.Once
	ticker := time.NewTicker(interval)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect(ctx)
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			cancel()
			close(done)
		})
	}
}

func (c *roomCollector) collect(ctx context.Context) {
	snapshot, err := c.store.Snapshot(ctx)
	if err != nil {
		log.Printf("Collector: snapshot failed: %v", err)
		return
	}

	rooms := len(snapshot)
	c.gauge.SetRoomsTracked(rooms)

	if rooms != c.logged {
		var total uint64
		for _, n := range snapshot {
			total += n
		}
		log.Printf("Collector: %d rooms tracked, %d messages total", rooms, total)
		c.logged = rooms
	}
}
