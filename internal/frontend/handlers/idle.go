package handlers

import (
	"sync"
	"sync/atomic"
	"time"
)

// IdleMonitorConfig configures StartIdleMonitor.
type IdleMonitorConfig struct {
	// LastInput holds the UnixNano time of the most recent player input.
	LastInput *atomic.Int64
	// IdleTimeout is the inactivity period before OnWarning is called.
	IdleTimeout time.Duration
	// GracePeriod is the time after the warning before OnDisconnect is called.
	GracePeriod time.Duration
	// TickInterval is how often LastInput is sampled. Defaults to one second.
	TickInterval time.Duration
	OnWarning    func()
	OnDisconnect func()
}

// StartIdleMonitor watches LastInput in a background goroutine. OnWarning is
// called once per idle spell; input after the warning re-arms it. OnDisconnect
// is called at most once, after which the monitor exits.
//
// Precondition: LastInput, OnWarning, and OnDisconnect must be non-nil; IdleTimeout > 0.
// Postcondition: Returns a stop function; no callback runs after it returns.
func StartIdleMonitor(cfg IdleMonitorConfig) (stop func()) {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		var warnedAt time.Time
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				idle := now.Sub(time.Unix(0, cfg.LastInput.Load()))
				switch {
				case idle < cfg.IdleTimeout:
					warnedAt = time.Time{}
				case warnedAt.IsZero():
					warnedAt = now
					cfg.OnWarning()
				case now.Sub(warnedAt) >= cfg.GracePeriod:
					cfg.OnDisconnect()
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
