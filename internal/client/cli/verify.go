package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/client/services"
)

func isSuperseded(err error) bool {
	return errors.Is(err, services.ErrSuperseded)
}

// Verify checks one serial number and prints the outcome.
func (a *App) Verify(ctx context.Context, serial string) error {
	res, err := a.verifier.Verify(ctx, serial)
	if err != nil {
		if isSuperseded(err) {
			return err
		}
		if res.SerialNumber == "" {
			return a.fail(err)
		}
		a.printResult(res)
		if apiErr, ok := client.AsError(err); ok && apiErr.Status == http.StatusNotFound {
			a.printf("Expected format: %s\n", services.SerialHint)
		}
		return err
	}
	a.printResult(res)
	if !res.IsValid {
		a.printf("Expected format: %s\n", services.SerialHint)
	}
	return nil
}

// Last shows the current result again.
func (a *App) Last(context.Context) error {
	res, ok := a.verifier.Current()
	if !ok {
		a.println("No verification yet")
		return nil
	}
	a.printResult(res)
	return nil
}

// History lists remembered verifications, newest first.
func (a *App) History(context.Context) error {
	h := a.verifier.History()
	if len(h) == 0 {
		a.println("History is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTATUS\tSERIAL\tPRODUCT\tSCANNED")
	for i, r := range h {
		product := ""
		if r.Certificate != nil {
			product = r.Certificate.ProductName
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Status(), r.SerialNumber, product, r.ScannedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) ClearHistory(context.Context) error {
	a.verifier.ClearHistory()
	a.verifier.ClearCurrent()
	a.println("History cleared")
	return nil
}

// Stats fetches and prints the scan statistics.
func (a *App) Stats(ctx context.Context) error {
	a.verifier.FetchStats(ctx)
	a.printStats()
	return nil
}

func (a *App) printStats() {
	s, ok := a.verifier.Stats()
	if !ok {
		a.println("Statistics are not available")
		return
	}
	a.printf("Scans:    %d total, %d today\n", s.TotalScans, s.TodayScans)
	a.printf("Verified: %d (%d%%)\n", s.VerifiedScans, a.verifier.VerificationRate())
	a.printf("Invalid:  %d\n", s.InvalidScans)
}

func (a *App) printResult(r models.VerificationResult) {
	if r.IsValid {
		a.printf("VERIFIED  %s\n", r.SerialNumber)
	} else {
		a.printf("INVALID   %s\n", r.SerialNumber)
		if r.Error != "" {
			a.printf("  Reason:   %s\n", r.Error)
		}
	}

	if c := r.Certificate; c != nil {
		if c.ProductName != "" {
			a.printf("  Product:  %s\n", c.ProductName)
		}
		if c.CustomerName != "" {
			a.printf("  Customer: %s\n", c.CustomerName)
		}
		if c.Status != "" {
			a.printf("  Status:   %s\n", c.Status)
		}
		if !c.IssuedAt.IsZero() {
			a.printf("  Issued:   %s\n", c.IssuedAt.Format(time.DateOnly))
		}
		if c.ExpiresAt != nil {
			a.printf("  Expires:  %s\n", c.ExpiresAt.Format(time.DateOnly))
		}
	}
	a.printf("  Scanned:  %s\n", r.ScannedAt.Local().Format(time.DateTime))
}
