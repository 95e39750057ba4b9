// Package store provides SQLite-backed history of ikvmbuild runs.
//
// Every build step, whether it compiled, stubbed, skipped or failed, can be
// appended as one row of the builds table. The log is append-only:
//   - Ordering uses the seq INTEGER column, NEVER started_at
//   - Writes with an existing id are ignored (ON CONFLICT DO NOTHING)
//   - args and warnings are stored as JSON arrays
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
