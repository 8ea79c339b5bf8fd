// Package server exposes audits over HTTP.
//
// Routes:
//   - POST /v1/audits runs one audit and returns the content, the
//     recommendation, task and thread ids and the audit metadata
//   - GET /v1/audits/{id} returns a stored report as the JSON export
//   - GET /v1/sites lists audited sites
//   - GET /v1/sites/{site}/audits lists the audit history of a site
//   - GET /healthz reports liveness
//
// Each audit runs under its own deadline. Independent requests audit
// concurrently; inside one audit pages are still scanned one at a time.
package server
