package cli

import (
	"context"
	"sync"
)

// Root restores the saved session, starts the session watcher and serves the
// REPL until the user exits. The watcher is stopped before Root returns.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to ProdAuth CLI (type 'help' for commands)")

	a.session.Initialize(ctx)
	if u := a.session.User(); u != nil {
		a.printf("Signed in as %s (%s)\n", u.Username, u.Role)
	}

	wctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartSessionWatcher(wctx, a.config.SessionCheckInterval)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}
