package sqlite

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically evicts stale, low-popularity entries from a Store.
type Sweeper struct {
	store          *Store
	interval       time.Duration
	maxAgeDays     int
	minAccessCount int64
	log            zerolog.Logger
	done           chan struct{}
	wg             sync.WaitGroup
}

// StartSweeper launches a background sweep loop over the store.
func StartSweeper(store *Store, interval time.Duration, maxAgeDays int, minAccessCount int64, log zerolog.Logger) *Sweeper {
	sw := &Sweeper{
		store:          store,
		interval:       interval,
		maxAgeDays:     maxAgeDays,
		minAccessCount: minAccessCount,
		log:            log,
		done:           make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.loop()
	return sw
}

func (sw *Sweeper) loop() {
	defer sw.wg.Done()
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()
	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			if _, err := sw.store.EvictStale(context.Background(), sw.maxAgeDays, sw.minAccessCount); err != nil {
				sw.log.Warn().Err(err).Msg("cache sweep failed")
			}
		}
	}
}

// Stop halts the sweep loop and waits for it to finish.
func (sw *Sweeper) Stop() {
	close(sw.done)
	sw.wg.Wait()
}
