// ABOUTME: Repeating timers used by the connection manager
// ABOUTME: Abstracted so tests can fire heartbeat and reconnect ticks by hand
package client

import (
	"sync"
	"time"
)

// Timer is a running repeating timer
type Timer interface {
	Stop()
}

// TimerFactory starts a timer that calls fire every interval until stopped
type TimerFactory func(interval time.Duration, fire func()) Timer

type tickerTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewTicker is the TimerFactory backed by time.Ticker
func NewTicker(interval time.Duration, fire func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}

	go func() {
		for {
			select {
			case <-t.ticker.C:
				fire()
			case <-t.stop:
				return
			}
		}
	}()

	return t
}

// Stop halts the ticker; further calls are no-ops
func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
	})
}
