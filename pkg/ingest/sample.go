package ingest

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Channel identifies one of the trainer's measured quantities.
type Channel int

const (
	Pressure Channel = iota
	Frequency
)

// Channels lists all channels in display order.
var Channels = []Channel{Pressure, Frequency}

func (c Channel) String() string {
	switch c {
	case Pressure:
		return "Pressure"
	case Frequency:
		return "Frequency"
	default:
		return "Channel(" + strconv.Itoa(int(c)) + ")"
	}
}

// Tag returns the wire tag of the channel.
func (c Channel) Tag() byte {
	switch c {
	case Pressure:
		return 'P'
	case Frequency:
		return 'B'
	default:
		return 0
	}
}

// Unit returns the display unit of the channel.
func (c Channel) Unit() string {
	switch c {
	case Pressure:
		return "cmH2O"
	case Frequency:
		return "bpm"
	default:
		return ""
	}
}

// channelForTag maps a wire tag to its channel.
func channelForTag(tag byte) (Channel, bool) {
	switch tag {
	case 'P':
		return Pressure, true
	case 'B':
		return Frequency, true
	default:
		return 0, false
	}
}

// Sample is a single reading parsed from a wire line.
type Sample struct {
	Channel  Channel
	Raw      float64 // Value as received
	Value    float64 // Value after unit scaling
	Sequence int     // Index assigned on append; -1 if not appended
}

// ParseLine parses a wire line such as "P123.4" or "B65.0".
//
// ok is false with a nil error for empty lines and unknown tags; those lines
// are ignored. Invalid UTF-8 yields a *DecodeError and a tagged line whose
// payload is not a number yields a *MalformedSampleError. The returned
// sample is unscaled and unsequenced.
func ParseLine(line []byte) (s Sample, ok bool, err error) {
	if !utf8.Valid(line) {
		return Sample{}, false, &DecodeError{Line: bytes.Clone(line)}
	}
	if len(line) == 0 {
		return Sample{}, false, nil
	}

	ch, known := channelForTag(line[0])
	if !known {
		return Sample{}, false, nil
	}

	payload := strings.TrimSpace(string(line[1:]))
	v, perr := strconv.ParseFloat(payload, 64)
	if perr != nil {
		return Sample{}, false, &MalformedSampleError{Channel: ch, Payload: payload, Err: perr}
	}

	return Sample{Channel: ch, Raw: v, Value: v, Sequence: -1}, true, nil
}
