// Package pipeline is the batch invoker: it lists one directory, drops
// entries whose extension is excluded, and launches the external program
// once per remaining entry.
//
// Types:
//   - Entry: one listed name with its derived extension and joined path.
//   - RunStats: counters for a batch (total, excluded, attempted, failed …).
//
// Functions:
//   - Discover(dir) → []Entry
//     Non-recursive listing; extension split mirrors splitext semantics.
//   - Run(ctx, cfg, log, starter) → (RunStats, []launch.Result, error)
//     Sequential launch loop; optional wait for completion handles.
//   - Preview(cfg, log, w)
//     Decision table for --list without launching anything.
package pipeline
