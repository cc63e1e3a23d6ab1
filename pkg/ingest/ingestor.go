package ingest

import (
	"sync"

	"github.com/itohio/goneo/pkg/series"
)

// DefaultPressureScale converts raw pressure readings to display units.
const DefaultPressureScale = 0.1

// Ingestor folds parsed samples into per-channel series, gated on the
// session mode, and publishes events to its subscribers.
type Ingestor struct {
	// State (protected by mu)
	mu            sync.Mutex
	pressureScale float64
	session       Session
	series        map[Channel]*series.Series

	// Subscribers
	callbacks []func(Event)
	cbMu      sync.RWMutex
}

// New creates an Ingestor in Training mode. A zero pressureScale selects
// DefaultPressureScale.
func New(pressureScale float64) *Ingestor {
	if pressureScale == 0 {
		pressureScale = DefaultPressureScale
	}

	return &Ingestor{
		pressureScale: pressureScale,
		session:       NewSession(),
		series: map[Channel]*series.Series{
			Pressure:  series.New(),
			Frequency: series.New(),
		},
	}
}

// Subscribe registers a callback for all events. Callbacks run on the
// goroutine that caused the event and must not block.
func (i *Ingestor) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	i.cbMu.Lock()
	i.callbacks = append(i.callbacks, fn)
	i.cbMu.Unlock()
}

// Ingest parses one wire line and, in Training mode, appends it to its
// channel's series.
//
// ok reports whether the line carried a known tag and a numeric value. The
// returned sample has Sequence -1 if it was not appended (Evaluation mode).
// Errors are *DecodeError or *MalformedSampleError; nothing is modified then.
func (i *Ingestor) Ingest(line []byte) (Sample, bool, error) {
	s, ok, err := ParseLine(line)
	if err != nil || !ok {
		return s, ok, err
	}

	i.mu.Lock()
	if s.Channel == Pressure {
		s.Value = s.Raw * i.pressureScale
	}
	if i.session.Mode != Training {
		i.mu.Unlock()
		return s, true, nil
	}

	s.Sequence = i.session.Next()
	p := series.Point{Seq: s.Sequence, Value: s.Value}
	i.series[s.Channel].Append(p)
	i.mu.Unlock()

	i.publish(SampleAppended{Sample: s, Point: p})

	return s, true, nil
}

// ToggleMode switches between Training and Evaluation, resets the sequence
// counter and clears both series.
func (i *Ingestor) ToggleMode() Mode {
	i.mu.Lock()
	mode := i.session.Toggle()
	i.resetSeries()
	i.mu.Unlock()

	i.publish(ModeChanged{Mode: mode})
	return mode
}

// Begin starts a new session for a device connection. The mode is kept;
// the sequence and both series start over.
func (i *Ingestor) Begin(port string, baudRate int) Session {
	i.mu.Lock()
	mode := i.session.Mode
	i.session = NewSession()
	i.session.Mode = mode
	i.resetSeries()
	s := i.session
	i.mu.Unlock()

	i.publish(Connected{SessionID: s.ID, Port: port, BaudRate: baudRate})
	return s
}

// End marks the current session's device connection as closed.
func (i *Ingestor) End() {
	i.mu.Lock()
	id := i.session.ID
	i.mu.Unlock()

	i.publish(Disconnected{SessionID: id})
}

// ReportError publishes a PollError.
func (i *Ingestor) ReportError(err error) PollError {
	ev := PollError{Err: err}
	i.publish(ev)
	return ev
}

// SetPressureScale changes the pressure conversion factor for subsequent samples.
func (i *Ingestor) SetPressureScale(scale float64) {
	if scale == 0 {
		scale = DefaultPressureScale
	}
	i.mu.Lock()
	i.pressureScale = scale
	i.mu.Unlock()
}

// Mode returns the current mode.
func (i *Ingestor) Mode() Mode {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.session.Mode
}

// Sequence returns the next sequence number to be assigned.
func (i *Ingestor) Sequence() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.session.Sequence
}

// Session returns a copy of the current session.
func (i *Ingestor) Session() Session {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.session
}

// Series returns the series of a channel, or nil for an unknown channel.
func (i *Ingestor) Series(ch Channel) *series.Series {
	return i.series[ch]
}

// resetSeries empties all series. Caller holds mu.
func (i *Ingestor) resetSeries() {
	for _, s := range i.series {
		s.Reset()
	}
}

// publish calls all subscribers with ev.
func (i *Ingestor) publish(ev Event) {
	i.cbMu.RLock()
	callbacks := make([]func(Event), len(i.callbacks))
	copy(callbacks, i.callbacks)
	i.cbMu.RUnlock()

	for _, cb := range callbacks {
		cb(ev)
	}
}
