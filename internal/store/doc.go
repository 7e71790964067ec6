// Package store provides SQLite-backed storage for simulation traces.
//
// A trace is an append-only log:
//   - Runs: one row per recorded simulation session
//   - Events: every change the simulation processed, as reported to its
//     observers
//
// # Ordering
//
// Events are ordered by the simulation's logical seq, never by wall time.
// All event queries use ORDER BY seq ASC, so reading a trace back yields
// the exact processing order. Runs are listed by ID; run IDs are UUIDv7
// and therefore sort by creation time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
