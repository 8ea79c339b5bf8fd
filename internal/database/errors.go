package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file does
	// not exist and creation is disabled.
	ErrDatabaseNotFound = errors.New("database not found (use CreateIfNotExists option to create)")

	// ErrDuplicateAudit is returned when an audit id is saved twice.
	ErrDuplicateAudit = errors.New("audit already stored")

	// ErrInvalidReport is returned when a report without an id is saved.
	ErrInvalidReport = errors.New("report has no id")
)
