package cli

import (
	"context"
	"time"
)

// StartSessionWatcher runs until ctx is done. On every tick it renews a
// token that is about to expire and refreshes the scan statistics.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkSession(ctx, interval)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkSession(ctx context.Context, interval time.Duration) {
	if a.session.IsAuthenticated() {
		tctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
		refreshed, err := a.session.RefreshIfExpiring(tctx, refreshWindow(interval))
		cancel()

		switch {
		case err != nil && !isSuperseded(err):
			a.log.Warn(ctx, "session refresh failed", "err", err)
		case refreshed:
			a.log.Info(ctx, "session token renewed")
		}
	}

	tctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	a.verifier.FetchStats(tctx)
	cancel()
}

// refreshWindow is how close to expiry a token may get before the watcher
// renews it: two ticks, but never less than a minute.
func refreshWindow(interval time.Duration) time.Duration {
	return max(2*interval, time.Minute)
}
