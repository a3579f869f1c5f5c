// Package checks holds the individual setup checks: archive bucket layout,
// history schema and storefront reachability.
package checks
