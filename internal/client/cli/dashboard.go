package cli

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Dashboard loads every administrative collection and the scan statistics
// concurrently and prints a summary. A collection that fails to load keeps
// its previous contents; the first error is reported.
func (a *App) Dashboard(ctx context.Context) error {
	// A plain group: one failed load must not cancel the others.
	var g errgroup.Group
	g.Go(func() error { return a.customers.FetchAll(ctx) })
	g.Go(func() error { return a.products.FetchAll(ctx) })
	g.Go(func() error { return a.certificates.FetchAll(ctx) })
	g.Go(func() error {
		a.verifier.FetchStats(ctx)
		return nil
	})
	err := a.fail(g.Wait())

	a.printf("Customers:    %d\n", a.customers.Len())
	a.printf("Products:     %d\n", a.products.Len())
	a.printf("Certificates: %d\n", a.certificates.Len())
	a.printStats()
	return err
}
