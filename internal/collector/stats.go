package collector

// Stats summarizes one collection run
type Stats struct {
	Processed int // entities persisted this run
	Complete  int
	Partial   int
	Failed    int
	Skipped   int // already completed in a prior run
}

// Add accumulates another run's statistics into s
func (s *Stats) Add(other Stats) {
	s.Processed += other.Processed
	s.Complete += other.Complete
	s.Partial += other.Partial
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}
