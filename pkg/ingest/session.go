package ingest

import (
	"github.com/oklog/ulid/v2"
)

// Mode is the operating mode of a training session.
type Mode int

const (
	// Training appends and plots incoming samples.
	Training Mode = iota
	// Evaluation parses samples but keeps and shows nothing.
	Evaluation
)

func (m Mode) String() string {
	switch m {
	case Training:
		return "Training"
	case Evaluation:
		return "Evaluation"
	default:
		return "Mode(?)"
	}
}

// Toggled returns the other mode.
func (m Mode) Toggled() Mode {
	if m == Training {
		return Evaluation
	}
	return Training
}

// Session is the mode flag plus the sequence counter shared by all channels.
// A new session starts in Training with the counter at zero.
//
// Session is a plain value; Ingestor serializes access to the one it owns.
type Session struct {
	ID       ulid.ULID
	Mode     Mode
	Sequence int
}

// NewSession creates a session in Training mode with a fresh ID.
func NewSession() Session {
	return Session{
		ID:   ulid.Make(),
		Mode: Training,
	}
}

// Toggle flips the mode and resets the sequence counter.
func (s *Session) Toggle() Mode {
	s.Mode = s.Mode.Toggled()
	s.Sequence = 0
	return s.Mode
}

// Next returns the current sequence number and advances the counter.
func (s *Session) Next() int {
	n := s.Sequence
	s.Sequence++
	return n
}
