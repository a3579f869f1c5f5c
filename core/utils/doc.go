// Package utils holds small helpers shared across features: loose type
// conversion for store payloads and text normalisation for scraped content.
package utils
