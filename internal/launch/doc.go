// Package launch starts the external program for one directory entry and
// hands back a completion handle.
//
// Types:
//   - Starter: starts a process; ExecStarter is the os/exec implementation.
//   - Handle: PID, Wait (blocking, yields a Result) and Release (detach).
//   - Result: what is known about one launch (PID, exit code, duration, error).
//
// Launch failures are classified by [Classify] so the batch summary can say
// why a launch failed without parsing error strings.
package launch
