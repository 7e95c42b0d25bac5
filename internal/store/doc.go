// Package store provides SQLite-backed durable storage for the game journal.
//
// The journal is an append-only log with:
//   - Runs: one row per round, opened on start and closed on game over or
//     when a reset abandons it
//   - Events: every session event of a run, keyed by (run_id, seq)
//
// # Ordering
//
// Events are ordered by seq, the session's logical clock, never by
// timestamps. Each event row also carries its canonical trace line (see
// package trace), so a stored run can be replayed and verified byte for
// byte against a golden trace.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - BEGIN IMMEDIATE: Writers queue on busy_timeout instead of failing
//
// These are set on every pooled connection. The pool is small: the journal
// writes from the engine goroutine while history and the runs API read.
//
// Run ids are UUIDv7 so ListRuns can order by id as a tiebreaker.
package store
