package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Signals are the signals that interrupt a run.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignals returns a context cancelled on the first interrupt signal.
// force, if non-nil, is called with any further signal received before
// stop. stop releases the signal handler and cancels the context.
func WithSignals(parent context.Context, force func(os.Signal)) (ctx context.Context, stop context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, Signals...)
	done := make(chan struct{})

	go func() {
		interrupted := false
		for {
			select {
			case sig := <-sigCh:
				if !interrupted {
					interrupted = true
					cancel()
					continue
				}
				if force != nil {
					force(sig)
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel()
		})
	}
}
