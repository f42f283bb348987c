package cli

import "strings"

// Collection names; they double as the API resource paths.
const (
	kindCustomers    = "customers"
	kindProducts     = "products"
	kindCertificates = "certificates"
)

// parseKind accepts a collection name in singular or plural form.
func parseKind(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "customer", "customers":
		return kindCustomers, true
	case "product", "products":
		return kindProducts, true
	case "certificate", "certificates", "cert", "certs":
		return kindCertificates, true
	}
	return "", false
}
