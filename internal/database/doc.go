// Package database provides SQLite-based storage for a11yaudit.
//
// This package implements the AuditDB, which keeps the audit history:
// every finished audit report, keyed by audit id and grouped by site (the
// host of the audit's first URL). The compare command diffs the stored
// audits of a site.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
