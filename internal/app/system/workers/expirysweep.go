// internal/app/system/workers/expirysweep.go
package workers

import (
	"context"
	"sync"
	"time"

	invitestore "github.com/melodica-app/melodica/internal/app/store/invites"
	"go.uber.org/zap"
)

// ExpirySweep is a background worker that flips past-expiry invite codes
// to expired. Redemption expires codes lazily on lookup, so the sweep is
// not load-bearing for correctness; it keeps the stored state honest for
// codes nobody attempts to redeem.
type ExpirySweep struct {
	invites  *invitestore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewExpirySweep creates a new expiry sweep worker running every interval.
func NewExpirySweep(invStore *invitestore.Store, logger *zap.Logger, interval time.Duration) *ExpirySweep {
	return &ExpirySweep{
		invites:  invStore,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *ExpirySweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("invite expiry sweep started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ExpirySweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("invite expiry sweep stopped")
}

func (w *ExpirySweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpirySweep) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.invites.ExpireOutdated(ctx, time.Now())
	if err != nil {
		w.log.Error("failed to expire outdated invites", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("expired outdated invites", zap.Int64("count", count))
	}
}
