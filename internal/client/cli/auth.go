package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/client/repositories/token"
	"github.com/dmitrijs2005/prodauth/internal/common"
)

// Login prompts for a username and password and opens a session. The
// password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.session.Login(ctx, models.Credentials{Username: userName, Password: string(password)})
	if err != nil {
		return a.fail(err)
	}

	a.printf("Welcome, %s (%s)\n", resp.User.Username, resp.User.Role)
	return nil
}

// Logout ends the session and forgets the administrative data loaded with
// it. Verification history is kept.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.customers.Reset()
	a.products.Reset()
	a.certificates.Reset()
	a.println("Logged out")
	return nil
}

// WhoAmI prints the current user and what is known about the token.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		a.println("Not logged in")
		return nil
	}

	a.printf("User:    %s (id %d)\n", u.Username, u.ID)
	a.printf("Role:    %s\n", u.Role)
	if exp, ok := a.session.ExpiresAt(); ok {
		a.printf("Expires: %s\n", exp.Local().Format(time.DateTime))
	}
	if r, ok := a.tokens.(token.SavedAtReporter); ok {
		if at, ok, err := r.SavedAt(ctx); err == nil && ok {
			a.printf("Saved:   %s\n", at.Local().Format(time.DateTime))
		}
	}
	return nil
}
