// Package repository defines the data access interface for netlab.
//
// Diagnostic runs are persisted together with their parsed results so the
// history of a lab can be inspected after the containers are gone. The
// implementation lives in the sqlite subpackage.
//
// # Nullable Results
//
// Parsed ping fields are stored in nullable columns: a value the tool did
// not print is NULL, never zero. Tracepath hops keep their output order
// and an optional path MTU.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
