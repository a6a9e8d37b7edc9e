// Package history persists schedule run records to a local SQLite file.
//
// The store is optional: when disabled in config, Open returns (nil, nil)
// and the nil *Store is safe to call (every method reports ErrDisabled or
// empty results).
package history
