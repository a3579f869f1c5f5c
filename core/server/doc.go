// Package server holds the configuration of the HTTP status API.
//
// The start command serves run history and the on-demand sync trigger on
// Config.Address, protected by Config.ApiKey when one is set.
package server
