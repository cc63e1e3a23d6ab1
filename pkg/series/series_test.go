package series

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_AppendAndPoints(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.Len())

	s.Append(Point{Seq: 0, Value: 10})
	s.Append(Point{Seq: 2, Value: 5})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []Point{{0, 10}, {2, 5}}, s.Points())
}

func TestSeries_PointsIsCopy(t *testing.T) {
	s := New()
	s.Append(Point{Seq: 0, Value: 1})

	pts := s.Points()
	pts[0].Value = 99

	assert.Equal(t, float64(1), s.Points()[0].Value)
}

func TestSeries_Reset(t *testing.T) {
	s := New()
	for i := range 10 {
		s.Append(Point{Seq: i, Value: float64(i)})
	}
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Points())

	s.Append(Point{Seq: 0, Value: 3})
	assert.Equal(t, []Point{{0, 3}}, s.Points())
}

func TestSeries_Stats(t *testing.T) {
	s := New()
	assert.Equal(t, Stats{}, s.Stats())

	s.Append(Point{Seq: 0, Value: 2})
	s.Append(Point{Seq: 1, Value: 8})
	s.Append(Point{Seq: 2, Value: 5})

	st := s.Stats()
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, float64(5), st.Last)
	assert.Equal(t, float64(2), st.Min)
	assert.Equal(t, float64(8), st.Max)
	assert.InDelta(t, 5.0, st.Mean, 1e-9)
}

func TestSummarize_NonFinite(t *testing.T) {
	st := Summarize([]Point{
		{Seq: 0, Value: math.NaN()},
		{Seq: 1, Value: 100},
		{Seq: 2, Value: 200},
		{Seq: 3, Value: math.Inf(1)},
		{Seq: 4, Value: 300},
		{Seq: 5, Value: math.NaN()},
	})

	assert.Equal(t, 6, st.Count)
	assert.Equal(t, 300.0, st.Last, "last finite value")
	assert.Equal(t, 100.0, st.Min)
	assert.Equal(t, 300.0, st.Max)
	assert.InDelta(t, 200.0, st.Mean, 1e-9)

	st = Summarize([]Point{{Seq: 0, Value: math.NaN()}})
	assert.Equal(t, Stats{Count: 1}, st)
}

func TestSeries_ConcurrentAppend(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				s.Append(Point{Seq: g*100 + i, Value: float64(i)})
				_ = s.Len()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 400, s.Len())
}
