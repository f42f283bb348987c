package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
)

// List reloads a collection from the server and prints it.
func (a *App) List(ctx context.Context, kind string) error {
	var err error
	switch kind {
	case kindCustomers:
		err = a.customers.FetchAll(ctx)
	case kindProducts:
		err = a.products.FetchAll(ctx)
	case kindCertificates:
		err = a.certificates.FetchAll(ctx)
	}
	if err != nil {
		return a.fail(err)
	}
	return a.printKind(kind)
}

func (a *App) printKind(kind string) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	switch kind {
	case kindCustomers:
		items := a.customers.Items()
		if len(items) == 0 {
			a.println("No customers")
			return nil
		}
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCOMPANY")
		for _, c := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Phone, c.Company)
		}
	case kindProducts:
		items := a.products.Items()
		if len(items) == 0 {
			a.println("No products")
			return nil
		}
		fmt.Fprintln(tw, "ID\tNAME\tSKU\tCUSTOMER")
		for _, p := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.SKU, optionalID(p.CustomerID))
		}
	case kindCertificates:
		items := a.certificates.Items()
		if len(items) == 0 {
			a.println("No certificates")
			return nil
		}
		fmt.Fprintln(tw, "ID\tSERIAL\tPRODUCT\tCUSTOMER\tSTATUS\tISSUED")
		for _, c := range items {
			issued := ""
			if !c.IssuedAt.IsZero() {
				issued = c.IssuedAt.Format(time.DateOnly)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.SerialNumber, c.ProductName, c.CustomerName, c.Status, issued)
		}
	}
	return tw.Flush()
}

// Add prompts for the fields of a new record and creates it.
func (a *App) Add(ctx context.Context, kind string) error {
	switch kind {
	case kindCustomers:
		in, err := a.customerInput(models.Customer{})
		if err != nil {
			return a.fail(err)
		}
		c, err := a.customers.Create(ctx, in)
		if err != nil {
			return a.fail(err)
		}
		a.printf("Customer %d created\n", c.ID)
	case kindProducts:
		in, err := a.productInput(models.Product{})
		if err != nil {
			return a.fail(err)
		}
		p, err := a.products.Create(ctx, in)
		if err != nil {
			return a.fail(err)
		}
		a.printf("Product %d created\n", p.ID)
	case kindCertificates:
		in, err := a.certificateInput(models.Certificate{})
		if err != nil {
			return a.fail(err)
		}
		c, err := a.certificates.Create(ctx, in)
		if err != nil {
			return a.fail(err)
		}
		a.printf("Certificate %d issued: %s\n", c.ID, c.SerialNumber)
	}
	return nil
}

// Update prompts for new field values of record id. An empty answer keeps
// the current value. The record must be in the local list, which is loaded
// first when empty.
func (a *App) Update(ctx context.Context, kind string, id int64) error {
	switch kind {
	case kindCustomers:
		cur, ok := findOrFetch(ctx, a.customers.Get, a.customers.Len, a.customers.FetchAll, id)
		if !ok {
			return a.notFound(kind, id)
		}
		in, err := a.customerInput(cur)
		if err != nil {
			return a.fail(err)
		}
		if _, err := a.customers.Update(ctx, id, in); err != nil {
			return a.fail(err)
		}
	case kindProducts:
		cur, ok := findOrFetch(ctx, a.products.Get, a.products.Len, a.products.FetchAll, id)
		if !ok {
			return a.notFound(kind, id)
		}
		in, err := a.productInput(cur)
		if err != nil {
			return a.fail(err)
		}
		if _, err := a.products.Update(ctx, id, in); err != nil {
			return a.fail(err)
		}
	case kindCertificates:
		cur, ok := findOrFetch(ctx, a.certificates.Get, a.certificates.Len, a.certificates.FetchAll, id)
		if !ok {
			return a.notFound(kind, id)
		}
		in, err := a.certificateInput(cur)
		if err != nil {
			return a.fail(err)
		}
		if _, err := a.certificates.Update(ctx, id, in); err != nil {
			return a.fail(err)
		}
	}
	a.printf("Updated %s %d\n", singular(kind), id)
	return nil
}

// Delete removes record id after a confirmation.
func (a *App) Delete(ctx context.Context, kind string, id int64) error {
	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete %s %d? (y/N)", singular(kind), id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		a.println("Cancelled")
		return nil
	}

	switch kind {
	case kindCustomers:
		err = a.customers.Delete(ctx, id)
	case kindProducts:
		err = a.products.Delete(ctx, id)
	case kindCertificates:
		err = a.certificates.Delete(ctx, id)
	}
	if err != nil {
		return a.fail(err)
	}
	a.printf("Deleted %s %d\n", singular(kind), id)
	return nil
}

func (a *App) customerInput(cur models.Customer) (models.CustomerInput, error) {
	in := models.CustomerInput{}
	var err error
	if in.Name, err = a.ask("Name", cur.Name, true); err != nil {
		return in, err
	}
	if in.Email, err = a.ask("Email", cur.Email, false); err != nil {
		return in, err
	}
	if in.Phone, err = a.ask("Phone", cur.Phone, false); err != nil {
		return in, err
	}
	if in.Company, err = a.ask("Company", cur.Company, false); err != nil {
		return in, err
	}
	return in, nil
}

func (a *App) productInput(cur models.Product) (models.ProductInput, error) {
	in := models.ProductInput{}
	var err error
	if in.Name, err = a.ask("Name", cur.Name, true); err != nil {
		return in, err
	}
	if in.SKU, err = a.ask("SKU", cur.SKU, false); err != nil {
		return in, err
	}
	if in.CustomerID, err = a.askID("Customer ID", cur.CustomerID, false); err != nil {
		return in, err
	}

	prompt := "Description"
	if cur.Description != "" {
		prompt += " (leave empty to keep the current one)"
	}
	desc, err := GetMultiline(a.reader, prompt, a.out)
	if err != nil {
		return in, err
	}
	if desc == "" {
		desc = cur.Description
	}
	in.Description = desc
	return in, nil
}

func (a *App) certificateInput(cur models.Certificate) (models.CertificateInput, error) {
	in := models.CertificateInput{}
	var err error
	if in.ProductID, err = a.askID("Product ID", cur.ProductID, true); err != nil {
		return in, err
	}
	if in.CustomerID, err = a.askID("Customer ID", cur.CustomerID, false); err != nil {
		return in, err
	}
	if in.Status, err = a.ask("Status", cur.Status, false); err != nil {
		return in, err
	}
	return in, nil
}

// ask reads one field. An empty answer keeps cur; a required field with
// neither is a validation error.
func (a *App) ask(label, cur string, required bool) (string, error) {
	prompt := label
	if cur != "" {
		prompt = fmt.Sprintf("%s [%s]", label, cur)
	}
	v, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		v = cur
	}
	if required && v == "" {
		return "", client.NewValidationError(label + " is required.")
	}
	return v, nil
}

func (a *App) askID(label string, cur int64, required bool) (int64, error) {
	s, err := a.ask(label, optionalID(cur), required)
	if err != nil || s == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, client.NewValidationError(label + " must be a positive number.")
	}
	return id, nil
}

func (a *App) notFound(kind string, id int64) error {
	err := fmt.Errorf("%s %d is not in the list", singular(kind), id)
	a.printf("No %s with id %d\n", singular(kind), id)
	return err
}

// findOrFetch looks id up in the local list, loading the list once when it
// is empty.
func findOrFetch[T any](ctx context.Context, get func(int64) (T, bool), size func() int, fetch func(context.Context) error, id int64) (T, bool) {
	if v, ok := get(id); ok {
		return v, true
	}
	if size() == 0 {
		if err := fetch(ctx); err != nil {
			var zero T
			return zero, false
		}
	}
	return get(id)
}

func optionalID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func singular(kind string) string {
	return strings.TrimSuffix(kind, "s")
}
