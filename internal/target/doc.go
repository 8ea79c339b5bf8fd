// Package target turns raw user input into the list of pages an audit scans.
//
// Every entry point (CLI arguments, the HTTP API, config files) passes its
// URL text through ParseURLs, and IsValidURL is the one place that decides
// what an auditable URL looks like. Exclude patterns are applied afterwards
// with Filter.
package target
