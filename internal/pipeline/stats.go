package pipeline

// RunStats tracks aggregate counters across a batch run.
//
// Total = Excluded + Skipped + Attempted. Attempted counts launch attempts;
// Launched those that started (or would have, in a dry run). Failed counts
// start failures plus, in wait mode, non-zero exits.
type RunStats struct {
	Total      int
	Excluded   int
	Skipped    int
	Attempted  int
	Launched   int
	Failed     int
	InputBytes int64
}

// StartFailures returns the attempts that never produced a process.
func (s *RunStats) StartFailures() int {
	return s.Attempted - s.Launched
}
