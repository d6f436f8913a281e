package frontend

import (
	"sync/atomic"
	"time"
)

// Stats accumulates parse time and bytes parsed across every parse made
// through the drivers sharing it. It is safe for concurrent use.
type Stats struct {
	nanos atomic.Int64
	bytes atomic.Int64
	count atomic.Int64
}

// TotalTime is the cumulative time spent in the grammar engine.
func (s *Stats) TotalTime() time.Duration { return time.Duration(s.nanos.Load()) }

// TotalBytes is the cumulative number of source bytes consumed.
func (s *Stats) TotalBytes() int64 { return s.bytes.Load() }

// Parses is the number of successful parses recorded.
func (s *Stats) Parses() int64 { return s.count.Load() }

func (s *Stats) record(elapsed time.Duration, bytes int) {
	s.nanos.Add(int64(elapsed))
	s.bytes.Add(int64(bytes))
	s.count.Add(1)
}
