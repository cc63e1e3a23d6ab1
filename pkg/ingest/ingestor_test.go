package ingest

import (
	"errors"
	"testing"

	"github.com/itohio/goneo/pkg/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects published events.
type recorder struct {
	events []Event
}

func (r *recorder) record(ev Event) { r.events = append(r.events, ev) }

func newRecorded() (*Ingestor, *recorder) {
	ing := New(0)
	rec := &recorder{}
	ing.Subscribe(rec.record)
	return ing, rec
}

func feed(t *testing.T, ing *Ingestor, lines ...string) {
	t.Helper()
	for _, l := range lines {
		_, _, err := ing.Ingest([]byte(l))
		require.NoError(t, err, "line %q", l)
	}
}

func TestNew_Defaults(t *testing.T) {
	ing := New(0)
	assert.Equal(t, DefaultPressureScale, ing.pressureScale)
	assert.Equal(t, Training, ing.Mode())
	assert.Equal(t, 0, ing.Sequence())
	assert.NotNil(t, ing.Series(Pressure))
	assert.NotNil(t, ing.Series(Frequency))
	assert.Nil(t, ing.Series(Channel(9)))
}

func TestIngest_PressureScaledInTraining(t *testing.T) {
	for _, x := range []float64{0, 1, 100, 123.4, -50, 1e6} {
		ing := New(0)
		line := []byte("P" + formatFloat(x))

		s, ok, err := ing.Ingest(line)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, 0, s.Sequence)
		assert.InDelta(t, x*0.1, s.Value, 1e-9)
		assert.InDelta(t, x, s.Raw, 1e-9)
		assert.Equal(t, 1, ing.Sequence())

		pts := ing.Series(Pressure).Points()
		require.Len(t, pts, 1)
		assert.Equal(t, 0, pts[0].Seq)
		assert.InDelta(t, x*0.1, pts[0].Value, 1e-9)
		assert.Equal(t, 0, ing.Series(Frequency).Len())
	}
}

func TestIngest_FrequencyUnscaled(t *testing.T) {
	ing := New(0)
	s, ok, err := ing.Ingest([]byte("B65.0"))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 65.0, s.Value)
	assert.Equal(t, []series.Point{{Seq: 0, Value: 65}}, ing.Series(Frequency).Points())
	assert.Equal(t, 0, ing.Series(Pressure).Len())
}

func TestIngest_CustomScale(t *testing.T) {
	ing := New(0.5)
	s, _, err := ing.Ingest([]byte("P10"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, s.Value)

	ing.SetPressureScale(2)
	s, _, err = ing.Ingest([]byte("P10"))
	require.NoError(t, err)
	assert.Equal(t, 20.0, s.Value)

	ing.SetPressureScale(0)
	s, _, err = ing.Ingest([]byte("P10"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Value)
}

func TestIngest_EvaluationDiscards(t *testing.T) {
	ing, rec := newRecorded()
	ing.ToggleMode()
	rec.events = nil

	s, ok, err := ing.Ingest([]byte("P200.0"))
	require.NoError(t, err)
	assert.True(t, ok, "line is still parsed")
	assert.Equal(t, -1, s.Sequence)
	assert.InDelta(t, 20.0, s.Value, 1e-9)

	assert.Equal(t, 0, ing.Sequence())
	assert.Equal(t, 0, ing.Series(Pressure).Len())
	assert.Equal(t, 0, ing.Series(Frequency).Len())
	assert.Empty(t, rec.events, "no redraw in Evaluation")
}

func TestIngest_UnknownTagIgnored(t *testing.T) {
	ing, rec := newRecorded()

	for _, line := range []string{"X1.0", "S OK", "", "#comment", "b60"} {
		_, ok, err := ing.Ingest([]byte(line))
		assert.NoError(t, err, "line %q", line)
		assert.False(t, ok, "line %q", line)
	}

	assert.Equal(t, 0, ing.Sequence())
	assert.Equal(t, 0, ing.Series(Pressure).Len())
	assert.Equal(t, 0, ing.Series(Frequency).Len())
	assert.Empty(t, rec.events)
}

func TestIngest_MalformedDoesNotModify(t *testing.T) {
	ing, rec := newRecorded()
	feed(t, ing, "P10")
	rec.events = nil

	for _, line := range []string{"Pgarbage", "P", "B12..3", "P--1"} {
		_, ok, err := ing.Ingest([]byte(line))
		var malformed *MalformedSampleError
		assert.True(t, errors.As(err, &malformed), "line %q", line)
		assert.False(t, ok)
	}

	assert.Equal(t, 1, ing.Sequence())
	assert.Equal(t, 1, ing.Series(Pressure).Len())
	assert.Equal(t, 0, ing.Series(Frequency).Len())
	assert.Empty(t, rec.events)
}

func TestIngest_DecodeErrorDoesNotModify(t *testing.T) {
	ing := New(0)
	_, _, err := ing.Ingest([]byte("B\xff60"))

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 0, ing.Sequence())
	assert.Equal(t, 0, ing.Series(Frequency).Len())
}

func TestIngest_SharedSequenceScenario(t *testing.T) {
	ing, rec := newRecorded()

	for _, line := range []string{"P100.0", "B60.0", "X1.0", "P50.0"} {
		_, _, err := ing.Ingest([]byte(line))
		require.NoError(t, err)
	}

	assert.Equal(t, []series.Point{{Seq: 0, Value: 10.0}, {Seq: 2, Value: 5.0}}, ing.Series(Pressure).Points())
	assert.Equal(t, []series.Point{{Seq: 1, Value: 60.0}}, ing.Series(Frequency).Points())
	assert.Equal(t, 3, ing.Sequence())

	require.Len(t, rec.events, 3)
	channels := []Channel{}
	for _, ev := range rec.events {
		appended, ok := ev.(SampleAppended)
		require.True(t, ok)
		assert.Equal(t, appended.Sample.Sequence, appended.Point.Seq)
		channels = append(channels, appended.Sample.Channel)
	}
	assert.Equal(t, []Channel{Pressure, Frequency, Pressure}, channels)
}

func TestIngest_EvaluationScenario(t *testing.T) {
	ing := New(0)
	feed(t, ing, "P100.0", "B60.0")

	assert.Equal(t, Evaluation, ing.ToggleMode())
	feed(t, ing, "P200.0")

	assert.Equal(t, 0, ing.Sequence())
	assert.Equal(t, 0, ing.Series(Pressure).Len())
	assert.Equal(t, 0, ing.Series(Frequency).Len())
}

func TestToggleMode(t *testing.T) {
	ing, rec := newRecorded()
	feed(t, ing, "P10", "B60", "P20")
	require.Equal(t, 3, ing.Sequence())
	rec.events = nil

	assert.Equal(t, Evaluation, ing.ToggleMode())
	assert.Equal(t, Evaluation, ing.Mode())
	assert.Equal(t, 0, ing.Sequence())
	assert.Equal(t, 0, ing.Series(Pressure).Len(), "series cleared on toggle")
	assert.Equal(t, 0, ing.Series(Frequency).Len())

	feed(t, ing, "P30")
	assert.Equal(t, 0, ing.Sequence())

	assert.Equal(t, Training, ing.ToggleMode())
	assert.Equal(t, Training, ing.Mode())
	assert.Equal(t, 0, ing.Sequence())

	feed(t, ing, "P40")
	assert.Equal(t, []series.Point{{Seq: 0, Value: 4}}, ing.Series(Pressure).Points())

	require.GreaterOrEqual(t, len(rec.events), 2)
	assert.Equal(t, ModeChanged{Mode: Evaluation}, rec.events[0])
	assert.Equal(t, ModeChanged{Mode: Training}, rec.events[1])
}

func TestBeginEnd(t *testing.T) {
	ing, rec := newRecorded()
	first := ing.Session().ID
	feed(t, ing, "P10", "B60")
	ing.ToggleMode()
	rec.events = nil

	s := ing.Begin("/dev/ttyUSB0", 9600)
	assert.NotEqual(t, first, s.ID)
	assert.Equal(t, Evaluation, s.Mode, "mode survives reconnect")
	assert.Equal(t, 0, s.Sequence)
	assert.Equal(t, 0, ing.Series(Pressure).Len())

	ing.End()

	require.Len(t, rec.events, 2)
	assert.Equal(t, Connected{SessionID: s.ID, Port: "/dev/ttyUSB0", BaudRate: 9600}, rec.events[0])
	assert.Equal(t, Disconnected{SessionID: s.ID}, rec.events[1])
}

func TestSubscribe_Nil(t *testing.T) {
	ing := New(0)
	ing.Subscribe(nil)
	feed(t, ing, "P1")
}

func TestSession(t *testing.T) {
	s := NewSession()
	assert.Equal(t, Training, s.Mode)
	assert.Equal(t, 0, s.Sequence)
	assert.NotZero(t, s.ID)

	assert.Equal(t, 0, s.Next())
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Sequence)

	assert.Equal(t, Evaluation, s.Toggle())
	assert.Equal(t, 0, s.Sequence)
	assert.Equal(t, Training, s.Toggle())
	assert.Equal(t, 0, s.Sequence)

	assert.Equal(t, "Training", Training.String())
	assert.Equal(t, "Evaluation", Evaluation.String())
}
