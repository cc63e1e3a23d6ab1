package series

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is a single (sequence, value) pair of a channel series.
type Point struct {
	Seq   int
	Value float64
}

// Stats summarises the values of a series.
type Stats struct {
	Count int
	Last  float64
	Min   float64
	Max   float64
	Mean  float64
}

// Series is an ordered, append-only buffer of points for one channel.
// It grows for the lifetime of a session and is emptied by Reset.
type Series struct {
	mu     sync.RWMutex
	points []Point
}

// New creates an empty series.
func New() *Series {
	return &Series{
		points: make([]Point, 0, 256),
	}
}

// Append adds a point to the end of the series.
func (s *Series) Append(p Point) {
	s.mu.Lock()
	s.points = append(s.points, p)
	s.mu.Unlock()
}

// Len returns the number of points.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Points returns a copy of all points, oldest first.
func (s *Series) Points() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Reset drops all points but keeps the allocated capacity.
func (s *Series) Reset() {
	s.mu.Lock()
	s.points = s.points[:0]
	s.mu.Unlock()
}

// Stats computes summary statistics. The zero Stats is returned for an empty series.
func (s *Series) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Summarize(s.points)
}

// Summarize computes summary statistics over points. Count includes every
// point; Last, Min, Max and Mean only consider finite values.
func Summarize(points []Point) Stats {
	if len(points) == 0 {
		return Stats{}
	}

	values := make([]float64, 0, len(points))
	for _, p := range points {
		if IsFinite(p.Value) {
			values = append(values, p.Value)
		}
	}

	st := Stats{Count: len(points)}
	if len(values) == 0 {
		return st
	}

	st.Last = values[len(values)-1]
	st.Min = floats.Min(values)
	st.Max = floats.Max(values)
	st.Mean = stat.Mean(values, nil)
	return st
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
