package ingest

import (
	"github.com/itohio/goneo/pkg/series"
	"github.com/oklog/ulid/v2"
)

// Event is published by the Ingestor to its subscribers.
type Event interface {
	isEvent()
}

// SampleAppended is published after a sample was appended to its channel's
// series; the presentation layer redraws that channel.
type SampleAppended struct {
	Sample Sample
	Point  series.Point
}

// ModeChanged is published after the session mode toggled. Both series are
// empty and the sequence counter is zero at this point.
type ModeChanged struct {
	Mode Mode
}

// Connected is published when a device connection starts a new session.
type Connected struct {
	SessionID ulid.ULID
	Port      string
	BaudRate  int
}

// Disconnected is published when the device connection was closed.
type Disconnected struct {
	SessionID ulid.ULID
}

// PollError is published when reading from the device failed. Polling continues.
type PollError struct {
	Err error
}

func (SampleAppended) isEvent() {}
func (ModeChanged) isEvent()    {}
func (Connected) isEvent()      {}
func (Disconnected) isEvent()   {}
func (PollError) isEvent()      {}
