// Package models defines the client-side domain and wire types of the
// product-authentication API: users and sessions, verification results and
// scan statistics, and the administrative records (customers, products,
// certificates).
package models
