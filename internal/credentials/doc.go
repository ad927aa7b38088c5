// Package credentials reads login credential records from the configured
// store: a local comma separated file, the same format served over HTTP(S),
// or a SQLite database.
//
// Every backend implements Source and reports any inability to produce the
// record list (missing file, non-2xx response, transport or database failure)
// as ErrUnavailable. Records are returned in store order; callers depend on
// that order for first-match semantics. The package never writes to a store.
package credentials
