// Package trigger starts sync runs on demand from the status API.
package trigger
